package codes

// EligibilityInfo covers EB01 eligibility or benefit information codes
var EligibilityInfo = newTable("eligibility or benefit information", map[string]string{
	"1":  "Active Coverage",
	"2":  "Active - Full Risk Capitation",
	"3":  "Active - Services Capitated",
	"4":  "Active - Services Capitated to Primary Care Physician",
	"5":  "Active - Pending Investigation",
	"6":  "Inactive",
	"7":  "Inactive - Pending Eligibility Update",
	"8":  "Inactive - Pending Investigation",
	"A":  "Co-Insurance",
	"B":  "Co-Payment",
	"C":  "Deductible",
	"CB": "Coverage Basis",
	"D":  "Benefit Description",
	"E":  "Exclusions",
	"F":  "Limitations",
	"G":  "Out of Pocket (Stop Loss)",
	"H":  "Unlimited",
	"I":  "Non-Covered",
	"J":  "Cost Containment",
	"K":  "Reserve",
	"L":  "Primary Care Provider",
	"M":  "Pre-existing Condition",
	"MC": "Managed Care Coordinator",
	"N":  "Services Restricted to Following Provider",
	"O":  "Not Deemed a Medical Necessity",
	"P":  "Benefit Disclaimer",
	"Q":  "Second Surgical Opinion Required",
	"R":  "Other or Additional Payor",
	"S":  "Prior Year(s) History",
	"T":  "Card(s) Reported Lost/Stolen",
	"U":  "Contact Following Entity for Eligibility or Benefit Information",
	"V":  "Cannot Process",
	"W":  "Other Source of Data",
	"X":  "Health Care Facility",
	"Y":  "Spend Down",
})

// Active eligibility codes: EB01 values that mean the member has coverage
var activeEligibility = map[string]bool{"1": true, "2": true, "3": true, "4": true, "5": true}

// IsActiveCoverage reports whether an EB01 code denotes active coverage
func IsActiveCoverage(code string) bool {
	return activeEligibility[code]
}

// CoverageLevel covers EB02 coverage level codes
var CoverageLevel = newTable("coverage level", map[string]string{
	"CHD": "Children Only",
	"DEP": "Dependents Only",
	"ECH": "Employee and Children",
	"EMP": "Employee Only",
	"ESP": "Employee and Spouse",
	"FAM": "Family",
	"IND": "Individual",
	"SPC": "Spouse and Children",
	"SPO": "Spouse Only",
})

// ServiceType covers EB03 and EQ01 service type codes
var ServiceType = newTable("service type", map[string]string{
	"1":  "Medical Care",
	"2":  "Surgical",
	"3":  "Consultation",
	"4":  "Diagnostic X-Ray",
	"5":  "Diagnostic Lab",
	"6":  "Radiation Therapy",
	"7":  "Anesthesia",
	"8":  "Surgical Assistance",
	"9":  "Other Medical",
	"10": "Blood Charges",
	"11": "Used Durable Medical Equipment",
	"12": "Durable Medical Equipment Purchase",
	"13": "Ambulatory Service Center Facility",
	"14": "Renal Supplies in the Home",
	"15": "Alternate Method Dialysis",
	"16": "Chronic Renal Disease (CRD) Equipment",
	"17": "Pre-Admission Testing",
	"18": "Durable Medical Equipment Rental",
	"19": "Pneumonia Vaccine",
	"20": "Second Surgical Opinion",
	"21": "Third Surgical Opinion",
	"22": "Social Work",
	"23": "Diagnostic Dental",
	"24": "Periodontics",
	"25": "Restorative",
	"26": "Endodontics",
	"27": "Maxillofacial Prosthetics",
	"28": "Adjunctive Dental Services",
	"30": "Health Benefit Plan Coverage",
	"32": "Plan Waiting Period",
	"33": "Chiropractic",
	"35": "Dental Care",
	"36": "Dental Crowns",
	"37": "Dental Accident",
	"38": "Orthodontics",
	"39": "Prosthodontics",
	"40": "Oral Surgery",
	"41": "Routine (Preventive) Dental",
	"42": "Home Health Care",
	"43": "Home Health Prescriptions",
	"44": "Home Health Visits",
	"45": "Hospice",
	"46": "Respite Care",
	"47": "Hospital",
	"48": "Hospital - Inpatient",
	"50": "Hospital - Outpatient",
	"51": "Hospital - Emergency Accident",
	"52": "Hospital - Emergency Medical",
	"53": "Hospital - Ambulatory Surgical",
	"54": "Long Term Care",
	"55": "Major Medical",
	"56": "Medically Related Transportation",
	"57": "Air Transportation",
	"58": "Cabulance",
	"59": "Licensed Ambulance",
	"60": "General Benefits",
	"61": "In-vitro Fertilization",
	"62": "MRI/CAT Scan",
	"63": "Donor Procedures",
	"64": "Acupuncture",
	"65": "Newborn Care",
	"66": "Pathology",
	"67": "Smoking Cessation",
	"68": "Well Baby Care",
	"69": "Maternity",
	"70": "Transplants",
	"71": "Audiology Exam",
	"72": "Inhalation Therapy",
	"73": "Diagnostic Medical",
	"74": "Private Duty Nursing",
	"75": "Prosthetic Device",
	"76": "Dialysis",
	"77": "Otological Exam",
	"78": "Chemotherapy",
	"79": "Allergy Testing",
	"80": "Immunizations",
	"81": "Routine Physical",
	"82": "Family Planning",
	"83": "Infertility",
	"84": "Abortion",
	"85": "AIDS",
	"86": "Emergency Services",
	"87": "Cancer",
	"88": "Pharmacy",
	"89": "Free Standing Prescription Drug",
	"90": "Mail Order Prescription Drug",
	"91": "Brand Name Prescription Drug",
	"92": "Generic Prescription Drug",
	"93": "Podiatry",
	"94": "Podiatry - Office Visits",
	"95": "Podiatry - Nursing Home Visits",
	"96": "Professional (Physician)",
	"97": "Anesthesiologist",
	"98": "Professional (Physician) Visit - Office",
	"99": "Professional (Physician) Visit - Inpatient",
	"A0": "Professional (Physician) Visit - Outpatient",
	"A1": "Professional (Physician) Visit - Nursing Home",
	"A2": "Professional (Physician) Visit - Skilled Nursing Facility",
	"A3": "Professional (Physician) Visit - Home",
	"A4": "Psychiatric",
	"A5": "Psychiatric - Room and Board",
	"A6": "Psychotherapy",
	"A7": "Psychiatric - Inpatient",
	"A8": "Psychiatric - Outpatient",
	"A9": "Rehabilitation",
	"AB": "Rehabilitation - Inpatient",
	"AC": "Rehabilitation - Outpatient",
	"AD": "Occupational Therapy",
	"AE": "Physical Medicine",
	"AF": "Speech Therapy",
	"AG": "Skilled Nursing Care",
	"AI": "Substance Abuse",
	"AJ": "Alcoholism",
	"AK": "Drug Addiction",
	"AL": "Vision (Optometry)",
	"AM": "Frames",
	"AO": "Lenses",
	"AQ": "Nonmedically Necessary Physical",
	"AR": "Experimental Drug Therapy",
	"BA": "Independent Medical Evaluation",
	"BB": "Partial Hospitalization (Psychiatric)",
	"BC": "Day Care (Psychiatric)",
	"BD": "Cognitive Therapy",
	"BG": "Cardiac Rehabilitation",
	"BH": "Pediatric",
	"BL": "Cardiac",
	"BT": "Gynecological",
	"BU": "Obstetrical",
	"BV": "Obstetrical/Gynecological",
	"BW": "Mail Order Prescription Drug: Brand Name",
	"BX": "Mail Order Prescription Drug: Generic",
	"BY": "Physician Visit - Office: Sick",
	"BZ": "Physician Visit - Office: Well",
	"C1": "Coronary Care",
	"CK": "Screening X-ray",
	"DG": "Dermatology",
	"DM": "Durable Medical Equipment",
	"GF": "Generic Prescription Drug - Formulary",
	"GN": "Generic Prescription Drug - Non-Formulary",
	"MH": "Mental Health",
	"NI": "Neonatal Intensive Care",
	"ON": "Oncology",
	"PT": "Physical Therapy",
	"PU": "Pulmonary",
	"RN": "Renal",
	"RT": "Residential Psychiatric Treatment",
	"TC": "Transitional Care",
	"UC": "Urgent Care",
})

// InsuranceType covers EB04 insurance type codes
var InsuranceType = newTable("insurance type", map[string]string{
	"12": "Medicare Secondary Working Aged Beneficiary or Spouse with Employer Group Health Plan",
	"13": "Medicare Secondary End-Stage Renal Disease Beneficiary",
	"14": "Medicare Secondary, No-fault Insurance including Auto is Primary",
	"15": "Medicare Secondary Worker's Compensation",
	"16": "Medicare Secondary Public Health Service (PHS) or Other Federal Agency",
	"41": "Medicare Secondary Black Lung",
	"42": "Medicare Secondary Veteran's Administration",
	"43": "Medicare Secondary Disabled Beneficiary Under Age 65 with Large Group Health Plan",
	"47": "Medicare Secondary, Other Liability Insurance is Primary",
	"AP": "Auto Insurance Policy",
	"C1": "Commercial",
	"CO": "Consolidated Omnibus Budget Reconciliation Act (COBRA)",
	"CP": "Medicare Conditionally Primary",
	"D":  "Disability",
	"DB": "Disability Benefits",
	"EP": "Exclusive Provider Organization",
	"FF": "Family or Friends",
	"GP": "Group Policy",
	"HM": "Health Maintenance Organization (HMO)",
	"HN": "Health Maintenance Organization (HMO) - Medicare Risk",
	"HS": "Special Low Income Medicare Beneficiary",
	"IN": "Indemnity",
	"IP": "Individual Policy",
	"LC": "Long Term Care",
	"LD": "Long Term Policy",
	"LI": "Life Insurance",
	"LT": "Litigation",
	"MA": "Medicare Part A",
	"MB": "Medicare Part B",
	"MC": "Medicaid",
	"MH": "Medigap Part A",
	"MI": "Medigap Part B",
	"MP": "Medicare Primary",
	"OT": "Other",
	"PE": "Property Insurance - Personal",
	"PL": "Personal",
	"PP": "Personal Payment (Cash - No Insurance)",
	"PR": "Preferred Provider Organization (PPO)",
	"PS": "Point of Service (POS)",
	"QM": "Qualified Medicare Beneficiary",
	"RP": "Property Insurance - Real",
	"SP": "Supplemental Policy",
	"TF": "Tax Equity Fiscal Responsibility Act (TEFRA)",
	"WC": "Workers Compensation",
	"WU": "Wrap Up Policy",
})

// TimePeriod covers EB06 time period qualifiers
var TimePeriod = newTable("time period qualifier", map[string]string{
	"6":  "Hour",
	"7":  "Day",
	"13": "24 Hours",
	"21": "Years",
	"22": "Service Year",
	"23": "Calendar Year",
	"24": "Year to Date",
	"25": "Contract",
	"26": "Episode",
	"27": "Visit",
	"28": "Outlier",
	"29": "Remaining",
	"30": "Exceeded",
	"31": "Not Exceeded",
	"32": "Lifetime",
	"33": "Lifetime Remaining",
	"34": "Month",
	"35": "Week",
	"36": "Admission",
})

// RejectReason covers AAA03 request validation reject reasons
var RejectReason = newTable("reject reason", map[string]string{
	"04": "Authorized Quantity Exceeded",
	"15": "Required application data missing",
	"41": "Authorization/Access Restrictions",
	"42": "Unable to Respond at Current Time",
	"43": "Invalid/Missing Provider Identification",
	"44": "Invalid/Missing Provider Name",
	"45": "Invalid/Missing Provider Specialty",
	"46": "Invalid/Missing Provider Phone Number",
	"47": "Invalid/Missing Provider State",
	"48": "Invalid/Missing Referring Provider Identification Number",
	"49": "Provider is Not Primary Care Physician",
	"50": "Provider Ineligible for Inquiries",
	"51": "Provider Not on File",
	"52": "Service Dates Not Within Provider Plan Enrollment",
	"53": "Inquired Benefit Inconsistent with Provider Type",
	"54": "Inappropriate Product/Service ID Qualifier",
	"55": "Inappropriate Product/Service ID",
	"56": "Inappropriate Date",
	"57": "Invalid/Missing Date(s) of Service",
	"58": "Invalid/Missing Date-of-Birth",
	"60": "Date of Birth Follows Date(s) of Service",
	"61": "Date of Death Precedes Date(s) of Service",
	"62": "Date of Service Not Within Allowable Inquiry Period",
	"63": "Date of Service in Future",
	"64": "Invalid/Missing Patient ID",
	"65": "Invalid/Missing Patient Name",
	"66": "Invalid/Missing Patient Gender Code",
	"67": "Patient Not Found",
	"68": "Duplicate Patient ID Number",
	"69": "Inconsistent with Patient's Age",
	"70": "Inconsistent with Patient's Gender",
	"71": "Patient Birth Date Does Not Match That for the Patient on the Database",
	"72": "Invalid/Missing Subscriber/Insured ID",
	"73": "Invalid/Missing Subscriber/Insured Name",
	"74": "Invalid/Missing Subscriber/Insured Gender Code",
	"75": "Subscriber/Insured Not Found",
	"76": "Duplicate Subscriber/Insured ID Number",
	"77": "Subscriber Found, Patient Not Found",
	"78": "Subscriber/Insured Not in Group/Plan Identified",
	"79": "Invalid Participant Identification",
	"80": "No Response received - Transaction Terminated",
	"97": "Invalid or Missing Provider Address",
	"98": "Experimental Service or Procedure",
	"AA": "Authorization Number Not Found",
	"AE": "Requires Primary Care Physician Authorization",
	"AF": "Invalid/Missing Diagnosis Code(s)",
	"AG": "Invalid/Missing Procedure Code(s)",
	"AO": "Additional Patient Condition Information Required",
	"CI": "Certification Information Does Not Match Patient",
	"E8": "Requires Medical Review",
	"IA": "Invalid Authorization Number Format",
	"MA": "Missing Authorization Number",
	"T4": "Payer Name or Identifier Missing",
})

// FollowUpAction covers AAA04 follow-up action codes
var FollowUpAction = newTable("follow-up action", map[string]string{
	"C": "Please Correct and Resubmit",
	"N": "Resubmission Not Allowed",
	"P": "Please Resubmit Original Transaction",
	"R": "Resubmission Allowed",
	"S": "Do Not Resubmit; Inquiry Initiated to a Third Party",
	"W": "Please Wait 30 Days and Resubmit",
	"X": "Please Wait 10 Days and Resubmit",
	"Y": "Do Not Resubmit; We Will Hand Deliver",
})

// Gender covers DMG03 gender codes
var Gender = newTable("gender", map[string]string{
	"F": "Female",
	"M": "Male",
	"U": "Unknown",
})

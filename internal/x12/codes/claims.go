package codes

// ClaimStatusCategory covers STC01-1 claim status category codes
var ClaimStatusCategory = newTable("claim status category", map[string]string{
	"A0":  "Acknowledgement/Forwarded",
	"A1":  "Acknowledgement/Receipt",
	"A2":  "Acknowledgement/Acceptance into adjudication system",
	"A3":  "Acknowledgement/Returned as unprocessable claim",
	"A4":  "Acknowledgement/Not Found",
	"A5":  "Acknowledgement/Split Claim",
	"A6":  "Acknowledgement/Rejected for Missing Information",
	"A7":  "Acknowledgement/Rejected for Invalid Information",
	"A8":  "Acknowledgement/Rejected for relational field in error",
	"D0":  "Data Search Unsuccessful",
	"DR":  "Data Reports",
	"E0":  "Response not possible - error on submitted request data",
	"E1":  "Response not possible - System Status",
	"E2":  "Information Holder is not responding; resubmit at a later time",
	"E3":  "Correction required - relational fields in error",
	"E4":  "Trading partner agreement specific requirement not met",
	"F0":  "Finalized",
	"F1":  "Finalized/Payment",
	"F2":  "Finalized/Denial",
	"F3":  "Finalized/Revised",
	"F3F": "Finalized/Forwarded",
	"F3N": "Finalized/Not Forwarded",
	"F4":  "Finalized/Adjudication Complete - No payment forthcoming",
	"P0":  "Pending: Adjudication/Details",
	"P1":  "Pending/In Process",
	"P2":  "Pending/Payer Review",
	"P3":  "Pending/Provider Requested Information",
	"P4":  "Pending/Patient Requested Information",
	"P5":  "Pending/Payer Administrative/System hold",
	"R0":  "Requests for additional Information/General Requests",
	"R1":  "Requests for additional Information/Entity Requests",
	"R3":  "Requests for additional Information/Claim/Line",
	"R4":  "Requests for additional Information/Documentation",
	"R5":  "Request for additional information/more specific detail",
	"RQ":  "General Requests",
})

// ClaimStatus covers STC01-2 health care claim status codes. The full list is
// maintained by the code committee; the subset here is what payers return most.
var ClaimStatus = newTable("claim status", map[string]string{
	"0":   "Cannot provide further status electronically",
	"1":   "For more detailed information, see remittance advice",
	"2":   "More detailed information in letter",
	"3":   "Claim has been adjudicated and is awaiting payment cycle",
	"6":   "Balance due from the subscriber",
	"12":  "One or more originally submitted procedure codes have been combined",
	"15":  "One or more originally submitted procedure codes have been modified",
	"16":  "Claim/encounter has been forwarded to entity",
	"17":  "Claim/encounter has been forwarded by third party entity to entity",
	"18":  "Entity received claim/encounter, but returned invalid status",
	"19":  "Entity acknowledges receipt of claim/encounter",
	"20":  "Accepted for processing",
	"21":  "Missing or invalid information",
	"23":  "Returned to Entity",
	"24":  "Entity not approved as an electronic submitter",
	"25":  "Entity not approved",
	"26":  "Entity not found",
	"27":  "Policy canceled",
	"29":  "Subscriber and policy number/contract number mismatched",
	"30":  "Subscriber and subscriber id mismatched",
	"31":  "Subscriber and policyholder name mismatched",
	"32":  "Subscriber and policy number/contract number not found",
	"33":  "Subscriber and subscriber id not found",
	"35":  "Claim/encounter not found",
	"39":  "Claim/encounter has been recorded",
	"41":  "Special handling required at payer site",
	"42":  "Unable to respond at current time",
	"44":  "Charge amount",
	"45":  "Charge Count",
	"46":  "Submitted charges",
	"47":  "Total Charges",
	"54":  "Original Claim ID",
	"65":  "Claim/line has been paid",
	"85":  "Patient/Insured health identification number and name",
	"88":  "Entity's Blue Cross provider id",
	"89":  "Entity's Blue Shield provider id",
	"90":  "Entity's Medicare provider id",
	"91":  "Entity's Medicaid provider id",
	"92":  "Entity's UPIN",
	"97":  "Patient eligibility not found with entity",
	"100": "Date of service",
	"101": "Claim was processed as adjustment to previous claim",
	"104": "Processed according to plan provisions",
	"107": "Processed according to contract provisions",
	"109": "Entity not eligible",
	"116": "Claim submitted to incorrect payer",
	"117": "Claim requires signature-on-file indicator",
	"123": "Additional information requested from entity",
	"145": "Entity's mailing address",
	"153": "Entity's id number",
	"164": "Entity's contract/member number",
	"187": "Date(s) of service",
	"247": "Line Item label",
	"255": "Diagnosis code",
	"400": "Claim is out of balance",
	"454": "Procedure code for services rendered",
	"455": "Revenue code for services rendered",
	"460": "Only one Denial Reason code required",
	"483": "Maximum coverage amount met or exceeded for benefit period",
	"496": "Submitter not approved for electronic claim submissions on behalf of this entity",
	"562": "Entity's National Provider Identifier (NPI)",
	"673": "Patient Reason for Visit",
	"688": "Duplicate of a previously processed claim/line",
	"708": "Denied/Rejected: service not covered",
	"716": "Claim was pended for review",
	"747": "Entity's Street Address",
})

// EntityIdentifier covers NM101 and STC01-3 entity identifier codes
var EntityIdentifier = newTable("entity identifier", map[string]string{
	"03":  "Dependent",
	"1P":  "Provider",
	"2B":  "Third-Party Administrator",
	"36":  "Employer",
	"40":  "Receiver",
	"41":  "Submitter",
	"45":  "Drop-off Location",
	"71":  "Attending Physician",
	"72":  "Operating Physician",
	"73":  "Other Physician",
	"77":  "Service Location",
	"82":  "Rendering Provider",
	"85":  "Billing Provider",
	"87":  "Pay-to Provider",
	"DK":  "Ordering Physician",
	"DN":  "Referring Provider",
	"FA":  "Facility",
	"GP":  "Gateway Provider",
	"IL":  "Insured or Subscriber",
	"LR":  "Legal Representative",
	"P3":  "Primary Care Provider",
	"P5":  "Plan Sponsor",
	"PE":  "Payee",
	"PR":  "Payer",
	"PRP": "Primary Payer",
	"QC":  "Patient",
	"SEP": "Secondary Payer",
	"TTP": "Tertiary Payer",
	"VN":  "Vendor",
	"Y2":  "Managed Care Organization",
})

// HierarchicalLevel covers HL03 hierarchical level codes
var HierarchicalLevel = newTable("hierarchical level", map[string]string{
	"19": "Provider of Service",
	"20": "Information Source",
	"21": "Information Receiver",
	"22": "Subscriber",
	"23": "Dependent",
	"PT": "Claim Level",
})

// ReferenceQualifier covers REF01 reference identification qualifiers
var ReferenceQualifier = newTable("reference identification qualifier", map[string]string{
	"0F":  "Subscriber Number",
	"1K":  "Payor's Claim Number",
	"1L":  "Group or Policy Number",
	"1W":  "Member Identification Number",
	"6P":  "Group Number",
	"6R":  "Provider Control Number",
	"18":  "Plan Number",
	"49":  "Family Unit Number",
	"BLT": "Billing Type",
	"CE":  "Class of Contract Code",
	"D9":  "Claim Number",
	"EA":  "Medical Record Identification Number",
	"EI":  "Employer's Identification Number",
	"EJ":  "Patient Account Number",
	"F8":  "Original Reference Number",
	"FJ":  "Line Item Control Number",
	"HJ":  "Identity Card Number",
	"IG":  "Insurance Policy Number",
	"LU":  "Location Number",
	"N6":  "Plan Network Identification Number",
	"NQ":  "Medicaid Recipient Identification Number",
	"SY":  "Social Security Number",
	"TJ":  "Federal Taxpayer's Identification Number",
})

// DateQualifier covers DTP01/DTM01 date/time qualifiers
var DateQualifier = newTable("date/time qualifier", map[string]string{
	"036": "Expiration",
	"050": "Received",
	"096": "Discharge",
	"102": "Issue",
	"152": "Effective Date of Change",
	"232": "Claim Statement Period Start",
	"233": "Claim Statement Period End",
	"290": "Coordination of Benefits",
	"291": "Plan",
	"292": "Benefit",
	"295": "Primary Care Provider",
	"304": "Latest Visit or Consultation",
	"307": "Eligibility",
	"318": "Added",
	"346": "Plan Begin",
	"347": "Plan End",
	"348": "Benefit Begin",
	"349": "Benefit End",
	"356": "Eligibility Begin",
	"357": "Eligibility End",
	"405": "Production",
	"434": "Statement",
	"435": "Admission",
	"472": "Service",
})

// AmountQualifier covers AMT01 amount qualifiers seen in 277 and 835 responses
var AmountQualifier = newTable("amount qualifier", map[string]string{
	"AU": "Coverage Amount",
	"B6": "Allowed - Actual",
	"D8": "Discount Amount",
	"DY": "Per Day Limit",
	"F5": "Patient Amount Paid",
	"I":  "Interest",
	"KH": "Deduction Amount",
	"NL": "Negative Ledger Balance",
	"T":  "Tax",
	"T2": "Total Claim Before Taxes",
	"T3": "Total Submitted Charges",
	"YU": "In Process",
	"YY": "Returned",
	"ZK": "Federal Medicare or Medicaid Payment Mandate - Category 1",
})

// PlaceOfService covers CLM05-1 place of service codes
var PlaceOfService = newTable("place of service", map[string]string{
	"01": "Pharmacy",
	"02": "Telehealth Provided Other than in Patient's Home",
	"03": "School",
	"04": "Homeless Shelter",
	"10": "Telehealth Provided in Patient's Home",
	"11": "Office",
	"12": "Home",
	"19": "Off Campus-Outpatient Hospital",
	"20": "Urgent Care Facility",
	"21": "Inpatient Hospital",
	"22": "On Campus-Outpatient Hospital",
	"23": "Emergency Room - Hospital",
	"24": "Ambulatory Surgical Center",
	"31": "Skilled Nursing Facility",
	"32": "Nursing Facility",
	"49": "Independent Clinic",
	"50": "Federally Qualified Health Center",
	"53": "Community Mental Health Center",
	"57": "Non-residential Substance Abuse Treatment Facility",
	"71": "Public Health Clinic",
	"72": "Rural Health Clinic",
	"81": "Independent Laboratory",
	"99": "Other Place of Service",
})

package payer

// Defaults returns the payers onboarded out of the box. Deployments normally
// load their own table with LoadDirectory.
func Defaults() []Config {
	return []Config{
		{
			// Medicaid rejects extraneous member ids and SSNs; name and DOB are enough
			PayerID:               "UTMCD",
			DisplayName:           "Utah Medicaid",
			ClaimsPayerID:         "SKUT0",
			RequiresGenderInDMG:   false,
			SupportsMemberIDInNM1: false,
			DTPFormat:             DTPRange,
			AllowsNameOnly:        true,
			RequiredFields:        []string{FieldFirstName, FieldLastName, FieldDateOfBirth},
		},
		{
			PayerID:               "SX109",
			DisplayName:           "SelectHealth",
			ClaimsPayerID:         "SX109",
			RequiresGenderInDMG:   true,
			SupportsMemberIDInNM1: true,
			DTPFormat:             DTPSingle,
			RequiredFields:        []string{FieldFirstName, FieldLastName, FieldDateOfBirth, FieldMemberID},
			RecommendedFields:     []string{FieldGender},
		},
		{
			PayerID:               "87726",
			DisplayName:           "UnitedHealthcare",
			ClaimsPayerID:         "87726",
			RequiresGenderInDMG:   true,
			SupportsMemberIDInNM1: true,
			DTPFormat:             DTPSingle,
			RequiredFields:        []string{FieldFirstName, FieldLastName, FieldDateOfBirth, FieldMemberID},
			RecommendedFields:     []string{FieldGroupNumber},
		},
		{
			PayerID:               "60054",
			DisplayName:           "Aetna",
			ClaimsPayerID:         "60054",
			RequiresGenderInDMG:   true,
			SupportsMemberIDInNM1: true,
			DTPFormat:             DTPSingle,
			RequiredFields:        []string{FieldFirstName, FieldLastName, FieldDateOfBirth, FieldMemberID},
			RecommendedFields:     []string{FieldGroupNumber, FieldGender},
		},
	}
}

// DefaultDirectory indexes Defaults
func DefaultDirectory() *Directory {
	d, err := NewDirectory(Defaults()...)
	if err != nil {
		panic(err)
	}
	return d
}

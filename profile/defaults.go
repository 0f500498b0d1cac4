package profile

import "github.com/MrEthical07/dnaAuth/permission"

// Defaults returns the stock table. Admin carries the universal grant.
func Defaults() []Profile {
	return []Profile{
		{
			Sequence:      "ATCGATCGATCG",
			Role:          "admin",
			Permissions:   []string{"read", "write", "delete", "manage", permission.FullAccess},
			SecurityLevel: 5,
		},
		{
			Sequence:      "GCTAGCTAGCTA",
			Role:          "student",
			Permissions:   []string{"read", "enroll"},
			SecurityLevel: 2,
		},
		{
			Sequence:      "TTAACCGGTTAA",
			Role:          "instructor",
			Permissions:   []string{"read", "write", "grade"},
			SecurityLevel: 4,
		},
		{
			Sequence:      "AAAATTTTCCCC",
			Role:          "system",
			Permissions:   []string{"read", "write", "monitor"},
			SecurityLevel: 3,
		},
	}
}

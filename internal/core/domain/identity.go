package domain

// MaxIdentityLength matches the width of ballots.member_uid.
const MaxIdentityLength = 128

// ValidateIdentity rejects identities that cannot be stored as a member uid.
// Values shaped like AnonymizeIdentity output are refused so a raw uid is
// never mistaken for an already anonymized one.
func ValidateIdentity(identity string) error {
	switch {
	case identity == "":
		return BadRequest("identity is required")
	case len(identity) > MaxIdentityLength:
		return BadRequest("identity is too long")
	case IsAnonymized(identity):
		return BadRequest("identity has the shape of an anonymized value")
	}
	return nil
}

package token

// Principal is the authenticated identity derived from a validated token or
// from the identity store at issue time. Roles carry fully prefixed
// authorities (e.g. "ROLE_USER") so resource servers never rebuild them.
type Principal struct {
	Subject string
	Roles   []string
	Active  bool
}

// HasAuthority reports whether the principal carries the exact authority.
func (p Principal) HasAuthority(authority string) bool {
	for _, r := range p.Roles {
		if r == authority {
			return true
		}
	}
	return false
}

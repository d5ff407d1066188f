package model

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Requester is the authenticated principal on whose behalf an operation runs.
type Requester struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}

func (r Requester) Anonymous() bool {
	return r.ID == ""
}

// CanManage reports whether the requester may mutate something owned by ownerID.
func (r Requester) CanManage(ownerID string) bool {
	if r.Anonymous() {
		return false
	}
	return r.IsAdmin() || r.ID == ownerID
}

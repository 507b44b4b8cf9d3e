package services

// Authorizer reports whether requesterID may mutate a record owned by ownerID.
type Authorizer func(requesterID, ownerID string) bool

// OwnerOnly allows mutation by the record's owner and nobody else.
func OwnerOnly(requesterID, ownerID string) bool {
	return requesterID != "" && requesterID == ownerID
}

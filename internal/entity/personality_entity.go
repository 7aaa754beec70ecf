package entity

const (
	DefaultPersonalityId      = "default"
	DefaultPersonalityName    = "Default Assistant"
	DefaultPersonalityDetails = "You are a helpful assistant."
)

type Personality struct {
	Id        string
	Name      string
	Details   string
	IsDefault bool
}

func DefaultPersonality() *Personality {
	return &Personality{
		Id:        DefaultPersonalityId,
		Name:      DefaultPersonalityName,
		Details:   DefaultPersonalityDetails,
		IsDefault: true,
	}
}

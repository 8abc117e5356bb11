package domain

// RemoteEquipment — байк из ответа Strava athlete endpoint.
type RemoteEquipment struct {
	ExternalID     string
	Name           string
	Brand          string
	Model          string
	DistanceMeters float64
	FrameTypeCode  int
	Primary        bool
}

// RemoteAthlete — профиль атлета с вложенным списком снаряжения.
type RemoteAthlete struct {
	ID        int64
	FirstName string
	LastName  string
	Avatar    string
	Bikes     []RemoteEquipment
}

// TokenGrant — результат token endpoint (authorization_code или refresh_token грант).
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    int64
	Athlete      *RemoteAthlete // присутствует только в authorization_code гранте
}

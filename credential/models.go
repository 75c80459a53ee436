package credential

// ServiceAccount mirrors the nested service-account block of the configuration
// store. Field names follow the Google key file so the block can be pasted as-is.
type ServiceAccount struct {
	Type         string `yaml:"type" json:"type"`
	ProjectID    string `yaml:"project_id" json:"project_id"`
	PrivateKeyID string `yaml:"private_key_id" json:"private_key_id"`
	PrivateKey   string `yaml:"private_key" json:"private_key"`
	ClientEmail  string `yaml:"client_email" json:"client_email"`
	ClientID     string `yaml:"client_id" json:"client_id"`
	AuthURI      string `yaml:"auth_uri" json:"auth_uri"`
	TokenURI     string `yaml:"token_uri" json:"token_uri"`
}

// IsZero reports whether no field of the block was supplied.
func (sa ServiceAccount) IsZero() bool {
	return sa == ServiceAccount{}
}

func (sa ServiceAccount) missingFields() []string {
	fields := []struct {
		name  string
		value string
	}{
		{"type", sa.Type},
		{"project_id", sa.ProjectID},
		{"private_key_id", sa.PrivateKeyID},
		{"private_key", sa.PrivateKey},
		{"client_email", sa.ClientEmail},
		{"client_id", sa.ClientID},
		{"auth_uri", sa.AuthURI},
		{"token_uri", sa.TokenURI},
	}

	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

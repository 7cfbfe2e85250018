package config

import (
	"encoding/json"
	"os"
	"strings"
)

// Well-known binding labels.
const (
	LabelCloudant   = "cloudantNoSQLDB"
	LabelClassifier = "natural_language_classifier"

	userProvidedLabel = "user-provided"
)

// ServiceCredentials are the connection details for one bound service.
// They are resolved once at startup and never mutated afterwards.
type ServiceCredentials struct {
	ID       string
	URL      string
	Username string
	Password string
	Version  string
}

// IsZero reports whether no binding was resolved. Callers must handle the
// empty case; resolution never fails loudly.
func (c ServiceCredentials) IsZero() bool {
	return c == ServiceCredentials{}
}

type boundService struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Credentials struct {
		URL      string `json:"url"`
		Username string `json:"username"`
		Password string `json:"password"`
		Version  string `json:"version"`
	} `json:"credentials"`
}

// ResolveService finds credentials for a bound service in the VCAP_SERVICES
// environment blob. An entry list declared under the label itself wins; a
// user-provided entry whose name contains the label is the fallback. Absent
// or malformed bindings resolve to empty credentials rather than an error.
func ResolveService(label string) ServiceCredentials {
	return resolveService(os.Getenv("VCAP_SERVICES"), label)
}

func resolveService(raw, label string) ServiceCredentials {
	var services map[string][]boundService
	if err := json.Unmarshal([]byte(raw), &services); err != nil {
		return ServiceCredentials{}
	}

	if bound, ok := services[label]; ok && len(bound) > 0 {
		return credentialsFrom(bound[0])
	}

	for _, bound := range services[userProvidedLabel] {
		if strings.Contains(bound.Name, label) {
			return credentialsFrom(bound)
		}
	}

	return ServiceCredentials{}
}

func credentialsFrom(b boundService) ServiceCredentials {
	creds := ServiceCredentials{
		ID:       b.Name,
		URL:      b.Credentials.URL,
		Username: b.Credentials.Username,
		Password: b.Credentials.Password,
		Version:  b.Credentials.Version,
	}
	if creds.Version == "" {
		creds.Version = "v1"
	}
	return creds
}

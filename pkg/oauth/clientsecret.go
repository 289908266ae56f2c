package oauth

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ClientSecret is the file Google Cloud Console offers for download
// ("client_secret.json"). Credentials sit under "web" or "installed".
type ClientSecret struct {
	Web       *clientSecretApp `yaml:"web"`
	Installed *clientSecretApp `yaml:"installed"`
}

type clientSecretApp struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURIs []string `yaml:"redirect_uris"`
}

// ParseClientSecret decodes a client secret document. JSON is valid YAML,
// so the same decoder also accepts hand-written YAML variants.
func ParseClientSecret(data []byte) (*ClientSecret, error) {
	var cs ClientSecret
	if err := yaml.Unmarshal(data, &cs); err != nil {
		return nil, errors.Join(ErrClientSecretFile, err)
	}
	if cs.app() == nil {
		return nil, errors.Join(ErrClientSecretFile, errors.New(`missing "web" or "installed" section`))
	}
	return &cs, nil
}

// LoadClientSecret reads path. A missing file returns (nil, nil).
func LoadClientSecret(path string) (*ClientSecret, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.Join(ErrClientSecretFile, err)
	}
	return ParseClientSecret(data)
}

// Apply fills empty fields of cfg. Values already set (from env) win.
func (cs *ClientSecret) Apply(cfg GoogleConfig) GoogleConfig {
	app := cs.app()
	if app == nil {
		return cfg
	}
	if cfg.ClientID == "" {
		cfg.ClientID = app.ClientID
	}
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = app.ClientSecret
	}
	if cfg.RedirectURL == "" && len(app.RedirectURIs) > 0 {
		cfg.RedirectURL = app.RedirectURIs[0]
	}
	return cfg
}

func (cs *ClientSecret) app() *clientSecretApp {
	if cs == nil {
		return nil
	}
	if cs.Web != nil {
		return cs.Web
	}
	return cs.Installed
}

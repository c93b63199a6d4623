package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// StoreCredentials authenticate the document store client.
type StoreCredentials struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Credentials is the root of the secrets file.
//
//	store:
//	  addr: redis.internal:6379
//	  username: default
//	  password: ${REDIS_PASSWORD}
//	  db: 0
type Credentials struct {
	Store StoreCredentials `yaml:"store"`
}

// ErrNoStoreAddr is returned when the secrets file has no store address.
var ErrNoStoreAddr = errors.New("secrets: store.addr is required")

// Loader reads a mounted secrets file. It is used once at process start.
type Loader struct {
	filePath string
}

// NewLoader creates a secrets loader for filePath.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, expands and parses the secrets file.
func (l *Loader) Load() (*Credentials, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a secrets document. ${VAR} references are replaced with the
// matching environment variable; unknown fields are rejected.
func Parse(data []byte) (*Credentials, error) {
	data = expandEnvRefs(data)

	var creds Credentials
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&creds); err != nil {
		return nil, fmt.Errorf("failed to parse secrets yaml: %w", err)
	}

	if creds.Store.Addr == "" {
		return nil, ErrNoStoreAddr
	}

	return &creds, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvRefs only touches the ${NAME} form so passwords containing a bare
// '$' survive untouched.
func expandEnvRefs(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envRef.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

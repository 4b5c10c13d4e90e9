package repository

// Option applies a configuration option to artifact loading.
type Option func(*loadOptions)

type loadOptions struct {
	schemaVersion string
	columns       []string
}

// WithSchema overrides the schema version and column order the artifact must declare.
func WithSchema(version string, columns []string) Option {
	return func(o *loadOptions) {
		if version != "" {
			o.schemaVersion = version
		}
		if len(columns) > 0 {
			o.columns = columns
		}
	}
}

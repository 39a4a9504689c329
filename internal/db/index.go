package db

import "errors"

// IndexDefinition describes an FT index over hash keys. The shape is fixed
// to what the chunk index needs: tag fields for scoping, an optional text
// field, and one HNSW vector field.
type IndexDefinition struct {
	Name      string
	Prefixes  []string
	TagFields []string
	TextField string
	Vector    VectorField
}

// VectorField configures the HNSW vector attribute of an index.
// Distance metric is always cosine; stored type is FLOAT32.
type VectorField struct {
	Name        string
	Dimensions  int
	M           int
	EFConstruct int
}

// Validate checks the definition before FT.CREATE.
func (d *IndexDefinition) Validate() error {
	if d.Name == "" {
		return errors.New("index name is required")
	}
	if len(d.Prefixes) == 0 {
		return errors.New("at least one key prefix is required")
	}
	if d.Vector.Name == "" {
		return errors.New("vector field name is required")
	}
	if d.Vector.Dimensions <= 0 {
		return errors.New("vector dimensions must be positive")
	}
	return nil
}

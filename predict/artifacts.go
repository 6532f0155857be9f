package predict

import (
	"context"
	"errors"
	"fmt"
	"os"

	"diabetescheck/config"
	"diabetescheck/db"
	"diabetescheck/ml"
)

// Artifacts are the pre-trained objects the service is built from.
type Artifacts struct {
	Scaler         ml.Scaler
	Classifier     ml.Classifier
	ScalerKind     string
	ClassifierKind string
}

// Close releases artifacts that hold native resources.
func (a Artifacts) Close() error {
	var errs []error
	for _, v := range []any{a.Scaler, a.Classifier} {
		if c, ok := v.(ml.Closer); ok {
			errs = append(errs, c.Close())
		}
	}
	return errors.Join(errs...)
}

// ArtifactLoadError means an artifact could not be read or decoded at startup.
type ArtifactLoadError struct {
	Name string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact: %v", e.Name, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// ArtifactReader returns the kind and bytes of a configured artifact.
type ArtifactReader interface {
	Read(ctx context.Context, artifact config.ArtifactConfig) (kind string, payload []byte, err error)
}

// FileReader reads artifacts from the filesystem.
type FileReader struct{}

func (FileReader) Read(_ context.Context, artifact config.ArtifactConfig) (string, []byte, error) {
	payload, err := os.ReadFile(artifact.Path)
	if err != nil {
		return "", nil, err
	}
	return artifact.Type, payload, nil
}

// StoreReader reads artifacts from the SQLite artifact store.
type StoreReader struct {
	Store *db.Store
}

func (r StoreReader) Read(ctx context.Context, artifact config.ArtifactConfig) (string, []byte, error) {
	stored, err := r.Store.LoadArtifact(ctx, artifact.Name)
	if err != nil {
		return "", nil, err
	}
	if artifact.Type != "" && artifact.Type != stored.Kind {
		return "", nil, fmt.Errorf("stored kind %q does not match configured type %q", stored.Kind, artifact.Type)
	}
	return stored.Kind, stored.Payload, nil
}

// LoadArtifacts reads and decodes the scaler and the classifier. Any failure is an
// *ArtifactLoadError and the service must not start.
func LoadArtifacts(ctx context.Context, cfg config.ArtifactsConfig, reader ArtifactReader) (Artifacts, error) {
	scalerKind, payload, err := reader.Read(ctx, cfg.Scaler)
	if err != nil {
		return Artifacts{}, &ArtifactLoadError{Name: "scaler", Err: err}
	}
	scaler, err := ml.LoadScaler(scalerKind, payload)
	if err != nil {
		return Artifacts{}, &ArtifactLoadError{Name: "scaler", Err: err}
	}

	classifierKind, payload, err := reader.Read(ctx, cfg.Classifier)
	if err != nil {
		return Artifacts{}, &ArtifactLoadError{Name: "classifier", Err: err}
	}
	classifier, err := ml.LoadClassifier(classifierKind, payload, cfg.ONNXOptions())
	if err != nil {
		return Artifacts{}, &ArtifactLoadError{Name: "classifier", Err: err}
	}

	return Artifacts{
		Scaler:         scaler,
		Classifier:     classifier,
		ScalerKind:     scalerKind,
		ClassifierKind: classifierKind,
	}, nil
}

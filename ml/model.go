package ml

// Scaler normalises a FeatureVector with parameters learned at training time.
type Scaler interface {
	Transform(v FeatureVector) FeatureVector
}

// Classifier maps a scaled FeatureVector to a class label.
type Classifier interface {
	Predict(v FeatureVector) (int, error)
}

// Closer is implemented by artifacts that hold native resources.
type Closer interface {
	Close() error
}

package ml

// NumFeatures is the length of every FeatureVector.
const NumFeatures = 8

// Feature indexes into a FeatureVector.
const (
	Pregnancies = iota
	Glucose
	BloodPressure
	SkinThickness
	Insulin
	BMI
	DiabetesPedigreeFunction
	Age
)

// FeatureVector holds one set of measurements in the order the model was trained on.
type FeatureVector [NumFeatures]float64

// Field describes one input of the form.
type Field struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

var fields = [NumFeatures]Field{
	{Key: "pregnancies", Name: "Pregnancies", Label: "Pregnancies"},
	{Key: "glucose", Name: "Glucose", Label: "Glucose Level"},
	{Key: "blood_pressure", Name: "BloodPressure", Label: "Blood Pressure"},
	{Key: "skin_thickness", Name: "SkinThickness", Label: "Skin Thickness"},
	{Key: "insulin", Name: "Insulin", Label: "Insulin"},
	{Key: "bmi", Name: "BMI", Label: "BMI"},
	{Key: "diabetes_pedigree_function", Name: "DiabetesPedigreeFunction", Label: "Diabetes Pedigree Function"},
	{Key: "age", Name: "Age", Label: "Age"},
}

// Fields returns the input catalogue in vector order.
func Fields() []Field {
	out := make([]Field, NumFeatures)
	copy(out, fields[:])
	return out
}

// FeatureNames returns the training column names in vector order.
func FeatureNames() []string {
	names := make([]string, NumFeatures)
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Float32 returns the vector converted for runtimes that take float32 tensors.
func (v FeatureVector) Float32() []float32 {
	out := make([]float32, NumFeatures)
	for i, value := range v {
		out[i] = float32(value)
	}
	return out
}

func vectorFromSlice(values []float64) (FeatureVector, error) {
	var v FeatureVector
	if len(values) != NumFeatures {
		return v, errFeatureLength(len(values))
	}
	copy(v[:], values)
	return v, nil
}

// Package advice holds the canned documents returned for each prediction outcome.
package advice

// Outcome is the interpreted classifier label.
type Outcome string

const (
	NonDiabetic Outcome = "non_diabetic"
	Diabetic    Outcome = "diabetic"
)

// MissingFieldsMessage is shown when any input is left empty.
const MissingFieldsMessage = "Please fill all the fields before predicting."

// ParseErrorMessage is shown when an input is not a number; %s is the field label.
const ParseErrorMessage = "Please enter a numeric value for %s."

const nonDiabeticDocument = "✅ **Prediction**: The individual is **non-diabetic**.\n\n" +
	"### 🩺 Health Advice:\n" +
	"- Maintain a balanced diet rich in fiber, vegetables, lean proteins, and whole grains.\n" +
	"- Exercise regularly (30 mins of brisk walking, 5 times/week).\n" +
	"- Annual blood sugar checkups are recommended.\n" +
	"- Stay hydrated and maintain a healthy weight."

const diabeticDocument = "⚠️ **Prediction**: The individual is **likely diabetic**.\n\n" +
	"### 🩺 Medical Advice:\n" +
	"- Please consult a certified doctor.\n" +
	"- Medication such as Metformin may be needed.\n" +
	"- Regular monitoring of glucose, A1C, and cholesterol.\n\n" +
	"### 🥗 Diet & Lifestyle:\n" +
	"- Avoid sugary foods and refined carbs.\n" +
	"- Include oats, legumes, green veggies.\n" +
	"- Drink water, avoid smoking/alcohol.\n\n" +
	"### 🏃 Exercise Plan:\n" +
	"- 150 minutes of moderate-intensity activity/week.\n" +
	"- Include walking, yoga, cycling, or swimming.\n" +
	"- Add strength training twice a week."

// Result is what a prediction produces for the caller to render.
type Result struct {
	Outcome  Outcome `json:"outcome"`
	Label    int     `json:"label"`
	Document string  `json:"advice"`
}

// ForLabel maps a classifier label to its document. Only 0 is non-diabetic.
func ForLabel(label int) Result {
	outcome := OutcomeForLabel(label)
	return Result{Outcome: outcome, Label: label, Document: Document(outcome)}
}

func OutcomeForLabel(label int) Outcome {
	if label == 0 {
		return NonDiabetic
	}
	return Diabetic
}

// Document returns the markdown advice for an outcome.
func Document(o Outcome) string {
	if o == NonDiabetic {
		return nonDiabeticDocument
	}
	return diabeticDocument
}

// Documents returns both canonical documents, non-diabetic first.
func Documents() []string {
	return []string{nonDiabeticDocument, diabeticDocument}
}

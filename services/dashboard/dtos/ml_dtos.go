package dtos

// PredictRequest is the body of POST /predict on the scoring service.
type PredictRequest struct {
	Amount float64 `json:"amount"`
	Time   float64 `json:"time"`
}

// PredictResponse is the scoring service verdict. Confidence is a percentage and must be present.
type PredictResponse struct {
	Prediction string   `json:"prediction" validate:"oneof=Fraud Legitimate"`
	Confidence *float64 `json:"confidence" validate:"required,gte=0,lte=100"`
}

// StatusResponse is returned by GET / on the scoring service.
type StatusResponse struct {
	Status string `json:"status"`
}

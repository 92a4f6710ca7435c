package httpgin

type QuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

type OverrideInventoryRequest struct {
	AvailableCount *int64 `json:"availableCount"`
	ReservedCount  *int64 `json:"reservedCount"`
	SoldCount      *int64 `json:"soldCount"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

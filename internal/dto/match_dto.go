package dto

type ReceiveRequest struct {
	MobileNumber string   `json:"mobileNumber" validate:"required,numeric,min=6,max=15"`
	Message      string   `json:"message" validate:"max=2000"`
	Latitude     *float64 `json:"latitude" validate:"required,latitude"`
	Longitude    *float64 `json:"longitude" validate:"required,longitude"`
}

type ReceiveResponse struct {
	UserNotified int `json:"userNotified"`
}

type AcceptResponse struct {
	Message         string `json:"message"`
	AlreadyAccepted bool   `json:"alreadyAccepted"`
	Deactivated     int64  `json:"deactivated"`
	Purged          int64  `json:"purged"`
}

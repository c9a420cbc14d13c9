package models

type DeviceMetadata struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
	IPAddress  string `json:"ipAddress"`
}

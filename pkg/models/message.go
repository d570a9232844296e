package models

import "time"

// RawMessage is one queue envelope as received. Body is the unparsed JSON text.
type RawMessage struct {
	ID            string `json:"id"`
	Body          string `json:"body"`
	ReceiptHandle string `json:"-"`
}

// CanonicalRecord is the masked, normalized row written to user_logins. It
// never holds a raw IP address or device identifier.
type CanonicalRecord struct {
	UserID         string    `json:"user_id"`
	AppVersion     int       `json:"app_version"`
	DeviceType     string    `json:"device_type"`
	MaskedIP       string    `json:"masked_ip"`
	Locale         string    `json:"locale"`
	MaskedDeviceID string    `json:"masked_device_id"`
	CreateDate     time.Time `json:"create_date"`

	SourceMessageID string `json:"-"`
}

// Values returns the insert arguments in user_logins column order.
func (r CanonicalRecord) Values(dateLayout string) []interface{} {
	return []interface{}{
		r.UserID,
		r.AppVersion,
		r.DeviceType,
		r.MaskedIP,
		r.Locale,
		r.MaskedDeviceID,
		r.CreateDate.Format(dateLayout),
	}
}

// Columns lists user_logins columns in positional insert order.
var Columns = []string{
	"user_id",
	"app_version",
	"device_type",
	"masked_ip",
	"locale",
	"masked_device_id",
	"create_date",
}

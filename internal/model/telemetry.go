package model

// Header is one request header value. A header sent with several values
// appears once per value.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// TelemetryRecord describes one handled request. It is built once when the
// response is final and handed to a sink; nothing keeps a reference to it.
type TelemetryRecord struct {
	Endpoint       string   `json:"endpoint"`
	Duration       float64  `json:"duration"` // seconds
	URL            string   `json:"url"`
	QueryString    string   `json:"query_string"`
	Headers        []Header `json:"headers"`
	Role           *string  `json:"role"`
	RemoteAddr     string   `json:"remote_addr"`
	Method         string   `json:"method"`
	StatusCode     int      `json:"status_code"`
	ResponseLength *int64   `json:"response_length"`
}

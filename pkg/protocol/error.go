package protocol

// ErrorMessage reports a failed render to the receiver. Code is the
// coded error identifier (for example "E104").
type ErrorMessage struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (em *ErrorMessage) Error() string {
	if em.Code == "" {
		return em.Message
	}
	return em.Code + ": " + em.Message
}

// EncodeErrorMessage encodes an ErrorMessage payload.
func EncodeErrorMessage(em *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	return e.Bytes()
}

// DecodeErrorMessage decodes an ErrorMessage payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: code, Message: msg}, nil
}

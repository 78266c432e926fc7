package flac

import "fmt"

// Application is the decoded APPLICATION payload: a registered 4-byte
// application ID followed by opaque data.
type Application struct {
	ID   string
	Data []byte
}

func parseApplication(body []byte) (*Application, error) {
	if len(body) < 4 {
		return nil, fmt.Errorf("%w: APPLICATION body of %d bytes too short", ErrMalformedStream, len(body))
	}
	return &Application{
		ID:   string(body[:4]),
		Data: body[4:],
	}, nil
}

func (a *Application) encode() []byte {
	body := make([]byte, 4, 4+len(a.Data))
	copy(body, a.ID)
	return append(body, a.Data...)
}

// Block returns the payload re-encoded as a metadata block.
func (a *Application) Block() *Block {
	return NewBlock(TypeApplication, a.encode())
}

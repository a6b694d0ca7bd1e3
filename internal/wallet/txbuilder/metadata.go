package txbuilder

import (
	"bytes"

	"github.com/pkg/errors"
)

const metadataSeparator = 0x00

// Metadata is appended to inbound transfers to request a swap: the token to pay out
// and, optionally, the minimum amount out.
type Metadata struct {
	TokenOut  string
	AmountOut string
}

// EncodeMetadata returns tokenOut || 0x00 || amountOut.
func EncodeMetadata(tokenOut string, amountOut string) ([]byte, error) {
	if tokenOut == "" {
		return nil, errors.Wrap(ErrMalformedMetadata, "empty token")
	}
	if bytes.IndexByte([]byte(tokenOut), metadataSeparator) >= 0 || bytes.IndexByte([]byte(amountOut), metadataSeparator) >= 0 {
		return nil, errors.Wrap(ErrMalformedMetadata, "fields must not contain NUL")
	}

	out := make([]byte, 0, len(tokenOut)+1+len(amountOut))
	out = append(out, tokenOut...)
	out = append(out, metadataSeparator)
	out = append(out, amountOut...)

	return out, nil
}

// DecodeMetadata parses metadata, skipping a leading ERC20 transfer call if present.
func DecodeMetadata(data []byte) (*Metadata, error) {
	if IsTransfer(data) {
		data = data[TransferDataLength:]
	}

	idx := bytes.IndexByte(data, metadataSeparator)
	if idx <= 0 {
		return nil, errors.Wrap(ErrMalformedMetadata, "missing separator or token")
	}

	return &Metadata{
		TokenOut:  string(data[:idx]),
		AmountOut: string(data[idx+1:]),
	}, nil
}

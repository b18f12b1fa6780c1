package encoding

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// DecodeKey decodes key material passed as a command-line argument.
// Supported encodings: "hex", "base64", "base91", and "raw" (bytes of the
// argument as typed).
func DecodeKey(text, encoding string) ([]byte, error) {
	switch encoding {
	case "hex":
		key, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("decoding hex key: %w", err)
		}
		return key, nil
	case "base64":
		key, err := base64.StdEncoding.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 key: %w", err)
		}
		return key, nil
	case "base91":
		key, err := DecodeBase91([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("decoding base91 key: %w", err)
		}
		return key, nil
	case "raw":
		return []byte(text), nil
	default:
		return nil, fmt.Errorf("unknown key encoding %q (want hex, base64, base91, or raw)", encoding)
	}
}

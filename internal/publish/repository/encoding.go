package repository

import "encoding/base64"

// EncodeContent encodes the UTF-8 bytes of content for the contents API.
func EncodeContent(content string) string {
	return base64.StdEncoding.EncodeToString([]byte(content))
}

func DecodeContent(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

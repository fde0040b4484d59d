package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKeyDerivation indica que os argumentos não puderam ser serializados para a chave.
var ErrKeyDerivation = errors.New("cache key derivation failed")

// FuncKey monta prefix:name:md5(json(args)).
func FuncKey(prefix, name string, args any) (string, error) {
	b, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrKeyDerivation, name, err)
	}
	return prefix + ":" + name + ":" + digest(b), nil
}

// ResponseKey monta api:<endpoint>:md5(url).
func ResponseKey(endpoint, url string) string {
	return "api:" + endpoint + ":" + digest([]byte(url))
}

func digest(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

package services

import (
	"crypto/rand"
	"fmt"
)

// codeAlphabet — алфавит генерируемых кодов (верхний регистр + цифры).
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCodeLength — длина генерируемого кода по умолчанию.
const DefaultCodeLength = 10

// GenerateCodes генерирует count новых кодов, отсутствующих в existing.
// Принятые коды добавляются в existing, поэтому дубликаты невозможны ни
// между собой, ни с уже существующим пулом. При коллизии код просто
// генерируется заново.
func GenerateCodes(count, length int, existing map[string]struct{}) ([]string, error) {
	if length <= 0 {
		length = DefaultCodeLength
	}

	codes := make([]string, 0, count)
	for len(codes) < count {
		code, err := randomCode(length)
		if err != nil {
			return nil, err
		}
		if _, dup := existing[code]; dup {
			continue
		}
		existing[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

// randomCode возвращает случайную строку фиксированной длины из codeAlphabet.
func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	out := make([]byte, length)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}

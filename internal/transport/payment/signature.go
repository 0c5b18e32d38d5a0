package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
)

// DefaultSignatureTolerance максимальный допустимый возраст подписанного
// события. Защита от реплея старых payload'ов.
const DefaultSignatureTolerance = 5 * time.Minute

// VerifySignature проверяет подпись вебхука по схеме провайдера:
// заголовок вида `t=<unix>,v1=<hex>`, где v1 = HMAC-SHA256(secret, "<unix>.<body>").
// Любая ошибка здесь фатальна для события — до проверки подписи никакие мутации
// состояния не допускаются.
func VerifySignature(payload []byte, header string, secret []byte, tolerance time.Duration, now time.Time) error {
	timestamp, signatures, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	age := now.Sub(time.Unix(timestamp, 0))
	if age > tolerance || age < -tolerance {
		return errors.Wrapf(ErrStaleTimestamp, "timestamp %d", timestamp)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, signature := range signatures {
		decoded, decodeErr := hex.DecodeString(signature)
		if decodeErr != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// SignPayload строит валидный заголовок подписи. Используется тестами и
// локальной эмуляцией провайдера.
func SignPayload(payload []byte, secret []byte, now time.Time) string {
	timestamp := strconv.FormatInt(now.Unix(), 10)
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, errors.Wrap(ErrInvalidSignature, "empty signature header")
	}

	var timestamp int64 = -1
	var signatures []string

	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			parsed, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return 0, nil, errors.Wrap(ErrInvalidSignature, "malformed timestamp")
			}
			timestamp = parsed
		case "v1":
			signatures = append(signatures, parts[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return 0, nil, errors.Wrap(ErrInvalidSignature, "missing timestamp or signature")
	}
	return timestamp, signatures, nil
}

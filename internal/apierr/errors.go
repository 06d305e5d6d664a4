// Package apierr collects the distinct, client-safe failure kinds the
// gradecoin engine can produce, so a handler can return one typed error and
// let a single place translate it into the wire envelope and HTTP status.
package apierr

import "net/http"

// Code identifies one of the distinct failure modes named in the
// engine's request-validation contract. None of them leak internal state —
// each maps to a fixed, human-readable message.
type Code int

const (
	MalformedEnvelope Code = iota
	KeyDecryptFailed
	CipherSetupFailed
	PayloadDecryptFailed
	PayloadUTF8Failed
	PayloadJSONFailed
	NotPreapproved
	AlreadyRegistered
	InvalidPublicKey

	UnknownAccount
	BotSenderForbidden
	SelfTransfer
	AmountOutOfBounds
	InsufficientBalance
	DuplicatePending

	JwtInvalid
	JwtExpired
	JwtKeyInvalid
	JwtOther

	HashMismatch
	PoWInsufficient
	BlockUnderfilled
	UnknownTransactionInBlock
	DuplicateTransactionInBlock
	CoinbaseUnknown

	BodyTooLarge
	NotFound
	MethodNotAllowed
	MissingAuthorization
	Internal
)

var messages = map[Code]string{
	MalformedEnvelope:           "registration envelope is not valid base64",
	KeyDecryptFailed:            "failed to decrypt the temporary key",
	CipherSetupFailed:           "temporary key or initialization vector has the wrong length",
	PayloadDecryptFailed:        "failed to decrypt the registration payload",
	PayloadUTF8Failed:           "registration payload is not valid UTF-8",
	PayloadJSONFailed:           "registration payload is not valid JSON",
	NotPreapproved:              "this user cannot have a gradecoin account",
	AlreadyRegistered:           "this user is already authenticated",
	InvalidPublicKey:            "public key is not a valid RSA key",
	UnknownAccount:              "account with the given fingerprint is not known",
	BotSenderForbidden:          "bot accounts cannot propose transactions",
	SelfTransfer:                "source and target cannot be the same account",
	AmountOutOfBounds:           "transaction amount is outside the allowed range",
	InsufficientBalance:         "source account does not have enough balance",
	DuplicatePending:            "this pair already has another pending transaction",
	JwtInvalid:                  "invalid token",
	JwtExpired:                  "this token has expired",
	JwtKeyInvalid:               "the account's RSA key does not have a valid format",
	JwtOther:                    "unspecified token verification error",
	HashMismatch:                "given hash value does not match the actual computed hash",
	PoWInsufficient:             "block hash does not satisfy the required proof-of-work",
	BlockUnderfilled:            "block does not contain enough transactions",
	UnknownTransactionInBlock:   "block contains a transaction that is not pending",
	DuplicateTransactionInBlock: "block lists the same transaction more than once",
	CoinbaseUnknown:             "coinbase transaction does not resolve to a known account",
	BodyTooLarge:                "request body exceeds the allowed size",
	NotFound:                    "requested resource was not found",
	MethodNotAllowed:            "method not allowed on this endpoint",
	MissingAuthorization:        "authorization header is missing",
	Internal:                    "internal server error",
}

var statuses = map[Code]int{
	BodyTooLarge:         http.StatusRequestEntityTooLarge,
	NotFound:             http.StatusNotFound,
	MethodNotAllowed:     http.StatusMethodNotAllowed,
	MissingAuthorization: http.StatusMethodNotAllowed,
	Internal:             http.StatusInternalServerError,
}

// Error is a typed, client-safe validation failure.
type Error struct {
	Code Code
}

func New(code Code) *Error {
	return &Error{Code: code}
}

func (e *Error) Error() string {
	if msg, ok := messages[e.Code]; ok {
		return msg
	}
	return "unknown error"
}

// Status returns the HTTP status this error kind should be rendered with.
// Every code not otherwise listed is a plain validation failure: 400.
func (e *Error) Status() int {
	if status, ok := statuses[e.Code]; ok {
		return status
	}
	return http.StatusBadRequest
}

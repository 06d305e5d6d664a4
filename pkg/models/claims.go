package models

import "github.com/golang-jwt/jwt/v4"

// Claims is the JWT payload proposers sign over. Tha ("transaction or
// block hash") binds the token to one specific artifact so a captured
// token can't be replayed against a different transaction or block.
type Claims struct {
	Tha string `json:"tha"`
	jwt.RegisteredClaims
}

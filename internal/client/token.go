package client

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token 签名者
const tokenIssuer = "bomberbot"

// JoinClaims 加入游戏时附带的 JWT Claims
type JoinClaims struct {
	GameID   string `json:"game_id,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
	PlayerID string `json:"player_id"`
	jwt.RegisteredClaims
}

// GenerateJoinToken 生成加入游戏用的 HS256 Token
func GenerateJoinToken(secret, gameID, teamID, playerID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT 密钥为空")
	}
	now := time.Now()
	claims := JoinClaims{
		GameID:   gameID,
		TeamID:   teamID,
		PlayerID: playerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   playerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

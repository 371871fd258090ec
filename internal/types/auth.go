package types

type AuthMode string

const (
	AuthModeAuthenticated   AuthMode = "authenticated"
	AuthModeDemo            AuthMode = "demo"
	AuthModeUnauthenticated AuthMode = "unauthenticated"
)

type AuthStatus struct {
	Mode            AuthMode `json:"mode"`
	IsAuthenticated bool     `json:"isAuthenticated"`
	IsDemo          bool     `json:"isDemo"`
}

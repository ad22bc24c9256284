package api

// Endpoint paths relative to the configured base URL.
const (
	PathRequestCode   = "/auth/request-code"
	PathVerifyCode    = "/auth/verify-code"
	PathUsers         = "/users"
	PathProfile       = "/users/profile"
	PathSearchUsers   = "/users/search"
	DefaultSearchSize = 20
)

// RequestCodeRequest is the body of POST /auth/request-code.
type RequestCodeRequest struct {
	MobileNumber string `json:"mobileNumber"`
}

// VerifyCodeRequest is the body of POST /auth/verify-code.
type VerifyCodeRequest struct {
	MobileNumber string `json:"mobileNumber"`
	Code         string `json:"code"`
}

// VerifyCodeResponse is the success body of POST /auth/verify-code.
// Token is required. User carries at least the account ID when present.
type VerifyCodeResponse struct {
	Token     string   `json:"token"`
	IsNewUser bool     `json:"isNewUser"`
	User      *Profile `json:"user,omitempty"`
}

// Profile is a user profile as exchanged with the remote API.
type Profile struct {
	ID        string   `json:"id"`
	Alias     string   `json:"alias,omitempty"`
	FullName  string   `json:"fullName,omitempty"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	Balance   *float64 `json:"balance,omitempty"`
}

// Complete reports whether both alias and full name are present.
func (p Profile) Complete() bool {
	return p.Alias != "" && p.FullName != ""
}

// ProfileInput is the body of POST /users and PUT /users/profile.
type ProfileInput struct {
	FullName       string `json:"fullName"`
	Alias          string `json:"alias"`
	CanGiveTips    bool   `json:"canGiveTips"`
	CanReceiveTips bool   `json:"canReceiveTips"`
}

// ProfileEnvelope wraps every profile returned by /users endpoints.
type ProfileEnvelope struct {
	Data *Profile `json:"data"`
}

// SearchResponse is the body of GET /users/search.
type SearchResponse struct {
	Data []Profile `json:"data"`
}

// ErrorBody is the body of every non-2xx answer.
type ErrorBody struct {
	Message string `json:"message"`
}

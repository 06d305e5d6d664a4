package models

// Response is the envelope every endpoint replies with on both success and
// failure, mirroring the original implementation's GradeCoinResponse.
type Response struct {
	Res     string `json:"res"`
	Message string `json:"message"`
}

func Success(message string) Response {
	return Response{Res: "Success", Message: message}
}

func ErrorResponse(message string) Response {
	return Response{Res: "Error", Message: message}
}

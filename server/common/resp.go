package common

/*
Resp 是所有接口统一的响应体。

	Code 0 表示成功；
	Msg 错误描述，成功时为 "ok"；
	Data 业务数据；
*/
type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

const (
	CodeSuccess        = 0
	CodeUnknownError   = 1
	CodeParamError     = 2
	CodeNotFound       = 3
	CodeNotLogin       = 4
	CodeServiceStopped = 5
)

func MakeSuccessResp(data interface{}) Resp {
	return Resp{Code: CodeSuccess, Msg: "ok", Data: data}
}

func MakeUnknownErrorResp() Resp {
	return Resp{Code: CodeUnknownError, Msg: "unknown error"}
}

func MakeParamErrorResp(msg string) Resp {
	return Resp{Code: CodeParamError, Msg: msg}
}

func MakeNotFoundResp() Resp {
	return Resp{Code: CodeNotFound, Msg: "not found"}
}

func MakeNotLoginResp() Resp {
	return Resp{Code: CodeNotLogin, Msg: "not login"}
}

func MakeServiceStoppedResp() Resp {
	return Resp{Code: CodeServiceStopped, Msg: "service not ready"}
}

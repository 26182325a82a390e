package controller

type Code uint

const (
	CodeSuccess Code = iota + 1000
	CodeInternalErr
	CodeServerBusy
	CodeInvalidParam
	CodeUnsupportedAuthProtocol
	CodeInvalidToken
	CodeExpiredToken

	CodeNeedLogin
	CodeForbidden

	CodeTimeOut
	CodeBackendErr

	CodeNoSuchPost
	CodeNoSuchSession
)

var codeMsgMap = map[Code]string{
	CodeSuccess:                 "성공",
	CodeInternalErr:             "서버가 바쁩니다",
	CodeServerBusy:              "요청이 너무 많습니다",
	CodeInvalidParam:            "잘못된 요청입니다",
	CodeUnsupportedAuthProtocol: "지원하지 않는 인증 방식입니다",
	CodeInvalidToken:            "유효하지 않은 토큰",
	CodeExpiredToken:            "만료된 토큰",

	CodeNeedLogin: "로그인이 필요합니다",
	CodeForbidden: "권한이 없습니다",

	CodeTimeOut:    "요청 시간이 초과되었습니다",
	CodeBackendErr: "요청을 처리하지 못했습니다",

	CodeNoSuchPost:    "게시글이 없습니다",
	CodeNoSuchSession: "세션이 없습니다",
}

func (c Code) getMsg() string {
	msg, ok := codeMsgMap[c]
	if !ok {
		return "알 수 없는 오류"
	}
	return msg
}

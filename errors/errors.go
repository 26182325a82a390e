package eum

import "github.com/pkg/errors"

var (
	// common
	ErrInternal     = errors.New("서버가 바쁩니다")
	ErrTimeout      = errors.New("요청 시간이 초과되었습니다")
	ErrInvalidParam = errors.New("잘못된 요청입니다")
	ErrInvalidToken = errors.New("유효하지 않은 토큰")
	ErrExpiredToken = errors.New("만료된 토큰")
	ErrNeedLogin    = errors.New("로그인이 필요합니다")

	// backend
	ErrUnauthorized = errors.New("권한이 없습니다")
	ErrNotFound     = errors.New("대상을 찾을 수 없습니다")
	ErrBackend      = errors.New("백엔드 요청 실패")

	// session
	ErrNoSuchSession = errors.New("세션이 없습니다")
	ErrNoSuchKey     = errors.New("저장된 값이 없습니다")

	// post
	ErrNoSuchPost = errors.New("게시글이 없습니다")
)

// Messages shown to the UI in place of structured error detail.
const (
	MsgFetchPostsFailed  = "게시글을 불러오는 중 오류가 발생했습니다."
	MsgSearchPostsFailed = "게시글 검색 중 오류가 발생했습니다."
	MsgFetchInfoFailed   = "정보글을 불러오는 중 오류가 발생했습니다."
)

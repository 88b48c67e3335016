package domain

import "errors"

var (
	// ErrUnauthorizedSource 来源不在授权列表中，整批报价被拒绝
	ErrUnauthorizedSource = errors.New("unauthorized source")
	// ErrInsufficientLiquidity 该方向挂单总量不足以成交请求数量
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrInvalidTargetQuantity 请求数量必须为正
	ErrInvalidTargetQuantity = errors.New("target quantity must be positive")
)

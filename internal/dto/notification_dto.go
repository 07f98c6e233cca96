package dto

import (
	"notevault-be/internal/model"
	"notevault-be/pkg/query"
)

type NotificationListResponse struct {
	Data       []model.Notification `json:"data"`
	Pagination query.Pagination     `json:"pagination"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

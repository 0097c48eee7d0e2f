package service

import (
	"time"

	"copycheck/database"
	"copycheck/database/model"
)

type HistoryService struct{}

// Append writes one immutable history row for a completed action. fileName
// is empty when the input was typed rather than uploaded.
func (s *HistoryService) Append(userId int, actionType string, content string, result string, fileName string) error {
	db := database.GetDB()

	entry := &model.HistoryEntry{
		UserId:     userId,
		ActionType: actionType,
		Content:    content,
		Result:     result,
		FileName:   fileName,
		CreatedAt:  time.Now(),
	}
	return db.Create(entry).Error
}

// ListForUser returns every entry owned by userId, newest first. The id
// tiebreaker keeps ordering stable for rows created within the same second.
func (s *HistoryService) ListForUser(userId int) ([]model.HistoryEntry, error) {
	db := database.GetDB()

	var entries []model.HistoryEntry
	err := db.Model(model.HistoryEntry{}).
		Where("user_id = ?", userId).
		Order("created_at DESC, id DESC").
		Find(&entries).
		Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetForUser loads one entry, scoped to its owner.
func (s *HistoryService) GetForUser(userId int, id int) (*model.HistoryEntry, error) {
	db := database.GetDB()

	entry := &model.HistoryEntry{}
	err := db.Model(model.HistoryEntry{}).
		Where("id = ? AND user_id = ?", id, userId).
		First(entry).
		Error
	if err != nil {
		return nil, err
	}
	return entry, nil
}

package mysql

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

// messageRow message 表，Seq 保证同一会话内的插入顺序
type messageRow struct {
	Seq        uint64    `gorm:"column:seq;primaryKey;autoIncrement"`
	UUID       string    `gorm:"column:uuid;uniqueIndex;size:32;not null"`
	SenderID   string    `gorm:"column:sender_id;index:idx_pair;size:64;not null"`
	ReceiverID string    `gorm:"column:receiver_id;index:idx_pair;index:idx_receiver_seen;size:64;not null"`
	Text       string    `gorm:"column:text;type:text"`
	Image      string    `gorm:"column:image;type:mediumtext"`
	Seen       bool      `gorm:"column:seen;index:idx_receiver_seen"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (messageRow) TableName() string { return "message" }

func (r messageRow) message() model.Message {
	return model.Message{
		ID:         r.UUID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Text:       r.Text,
		Image:      r.Image,
		CreatedAt:  r.CreatedAt,
		Seen:       r.Seen,
	}
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) *messageRepository {
	return &messageRepository{db: db}
}

// Create 保存消息
func (r *messageRepository) Create(msg *model.Message) error {
	row := messageRow{
		UUID:       msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		Image:      msg.Image,
		Seen:       msg.Seen,
		CreatedAt:  msg.CreatedAt,
	}
	if err := r.db.Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errorx.Newf(errorx.CodeInvalidParam, "message %s already exists", msg.ID)
		}
		return wrapDBError(err, "保存消息")
	}
	return nil
}

// FindConversation 两人之间的消息，按插入顺序
func (r *messageRepository) FindConversation(userA, userB string) ([]model.Message, error) {
	var rows []messageRow
	err := r.db.
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", userA, userB, userB, userA).
		Order("seq").
		Find(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "查询消息记录")
	}
	var out []model.Message
	for _, row := range rows {
		out = append(out, row.message())
	}
	return out, nil
}

// MarkConversationSeen 把 from 发给 to 的未读消息全部标记已读
func (r *messageRepository) MarkConversationSeen(from, to string) error {
	err := r.db.Model(&messageRow{}).
		Where("sender_id = ? AND receiver_id = ? AND seen = ?", from, to, false).
		Update("seen", true).Error
	return wrapDBError(err, "标记会话已读")
}

// MarkSeen 标记单条已读，只有接收者可以标记
func (r *messageRepository) MarkSeen(id, receiverID string) error {
	var row messageRow
	if err := r.db.First(&row, "uuid = ?", id).Error; err != nil {
		return wrapDBErrorf(err, "message %s not found", id)
	}
	if row.ReceiverID != receiverID {
		return errorx.New(errorx.CodeUnauthorized, "not the receiver of this message")
	}
	err := r.db.Model(&messageRow{}).Where("seq = ?", row.Seq).Update("seen", true).Error
	return wrapDBError(err, "标记已读")
}

// CountUnseen 发给 to 的未读数，按发送者分组
func (r *messageRepository) CountUnseen(to string) (map[string]int, error) {
	var rows []struct {
		SenderID string
		N        int
	}
	err := r.db.Model(&messageRow{}).
		Select("sender_id, count(*) AS n").
		Where("receiver_id = ? AND seen = ?", to, false).
		Group("sender_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBError(err, "统计未读消息")
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.SenderID] = row.N
	}
	return counts, nil
}

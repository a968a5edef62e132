package model

import "time"

type User struct {
	Id         int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	UserId     string    `json:"user_id" gorm:"column:user_id;size:64;uniqueIndex;not null"`
	Username   string    `json:"username" gorm:"column:username;size:100;uniqueIndex;not null"`
	Nickname   string    `json:"nickname" gorm:"column:nickname;size:100"`
	Password   string    `json:"-" gorm:"column:password;size:255;not null"`
	Email      string    `json:"email" gorm:"column:email;size:255;uniqueIndex;not null"`
	CreateTime time.Time `json:"create_time" gorm:"column:gmt_create;autoCreateTime"`
	UpdateTime time.Time `json:"update_time" gorm:"column:gmt_modified;autoUpdateTime"`
}

func (User) TableName() string {
	return "user"
}

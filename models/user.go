package models

// AuthUser là người dùng do Supabase quản lý, hệ thống chỉ đọc id/email/tên
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DisplayName: không có tên hiển thị thì lấy phần trước @ của email
func (u AuthUser) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' {
			return u.Email[:i]
		}
	}
	return u.Email
}

package user

const (
	SelectUserByID = `
		SELECT id, uuid, email, password_hash, name, created_at
		FROM users
		WHERE uuid = $1
	`
	SelectUserByEmail = `
		SELECT id, uuid, email, password_hash, name, created_at
		FROM users
		WHERE email = $1
	`
	InsertUser = `
		INSERT INTO users (uuid, email, password_hash, name)
		VALUES ($1, $2, $3, $4)
		RETURNING
		  id, uuid, email, password_hash, name, created_at
	`
)

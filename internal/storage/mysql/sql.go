package mysql

const insertDocumentSQL = `
INSERT INTO documents
  (id, collection, slug, body, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const selectDocumentCols = `SELECT id, slug, body, created_at, updated_at FROM documents`

const getDocumentSQL = selectDocumentCols + `
WHERE collection = ? AND id = ?
`

const findBySlugSQL = selectDocumentCols + `
WHERE collection = ? AND slug = ?
`

// Oldest first; matches idx_collection_created (collection, created_at, id).
const listDocumentsSQL = selectDocumentCols + `
WHERE collection = ?
ORDER BY created_at, id
`

const replaceDocumentSQL = `
UPDATE documents
SET slug = ?, body = ?, updated_at = ?
WHERE collection = ? AND id = ?
`

const deleteDocumentSQL = `DELETE FROM documents WHERE collection = ? AND id = ?`

const insertUserSQL = `
INSERT INTO users (id, email, password_hash, role, created_at)
VALUES (?, ?, ?, ?, ?)
`

const selectUserCols = `SELECT id, email, password_hash, role, created_at FROM users`

const getUserSQL = selectUserCols + ` WHERE id = ?`

const getUserByEmailSQL = selectUserCols + ` WHERE email = ?`

const setUserRoleSQL = `UPDATE users SET role = ? WHERE id = ?`

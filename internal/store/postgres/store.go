package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gks/record-service/internal/auth"
	"gks/record-service/internal/branch"
	"gks/record-service/internal/models"
	"gks/record-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id       uuid PRIMARY KEY,
	username      text NOT NULL UNIQUE,
	password_hash text NOT NULL,
	full_name     text NOT NULL,
	role          text NOT NULL,
	branch_code   text NOT NULL DEFAULT '',
	job_title     text NOT NULL DEFAULT '',
	phone         text NOT NULL DEFAULT '',
	email         text NOT NULL DEFAULT '',
	is_online     boolean NOT NULL DEFAULT false,
	last_seen     timestamptz,
	created_at    timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS records (
	record_id       uuid PRIMARY KEY,
	record_type     text NOT NULL,
	plate           text NOT NULL DEFAULT '',
	work_order      text NOT NULL DEFAULT '',
	vin             text NOT NULL DEFAULT '',
	vin_last5       text NOT NULL DEFAULT '',
	reference_no    text NOT NULL DEFAULT '',
	case_key        text NOT NULL,
	note_text       text NOT NULL DEFAULT '',
	files           jsonb NOT NULL DEFAULT '[]'::jsonb,
	user_id         uuid NOT NULL,
	branch_code     text NOT NULL DEFAULT '',
	created_by_name text NOT NULL DEFAULT '',
	created_by_role text NOT NULL DEFAULT '',
	status          text NOT NULL,
	reject_reason   text NOT NULL DEFAULT '',
	created_at      timestamptz NOT NULL,
	updated_at      timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_case_key ON records (case_key);
CREATE INDEX IF NOT EXISTS idx_records_type ON records (record_type);
CREATE INDEX IF NOT EXISTS idx_records_branch ON records (branch_code);
CREATE INDEX IF NOT EXISTS idx_records_status ON records (status);
CREATE INDEX IF NOT EXISTS idx_records_vin_last5 ON records (vin_last5);

CREATE TABLE IF NOT EXISTS notifications (
	notification_id   uuid PRIMARY KEY,
	record_id         uuid NOT NULL,
	sender_id         uuid NOT NULL,
	sender_name       text NOT NULL DEFAULT '',
	recipient_id      uuid NOT NULL,
	recipient_name    text NOT NULL DEFAULT '',
	notification_type text NOT NULL,
	message           text NOT NULL DEFAULT '',
	is_read           boolean NOT NULL DEFAULT false,
	created_at        timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications (recipient_id, created_at DESC);

CREATE TABLE IF NOT EXISTS settings (
	settings_id          uuid PRIMARY KEY,
	ocr_provider         text NOT NULL DEFAULT 'browser',
	vision_api_key       text NOT NULL DEFAULT '',
	voice_provider       text NOT NULL DEFAULT 'browser',
	openai_api_key       text NOT NULL DEFAULT '',
	storage_type         text NOT NULL DEFAULT 'local',
	ftp_host             text NOT NULL DEFAULT '',
	ftp_user             text NOT NULL DEFAULT '',
	ftp_password         text NOT NULL DEFAULT '',
	aws_access_key       text NOT NULL DEFAULT '',
	aws_secret_key       text NOT NULL DEFAULT '',
	aws_bucket           text NOT NULL DEFAULT '',
	aws_region           text NOT NULL DEFAULT '',
	gdrive_client_id     text NOT NULL DEFAULT '',
	gdrive_client_secret text NOT NULL DEFAULT '',
	onedrive_client_id   text NOT NULL DEFAULT '',
	onedrive_client_secret text NOT NULL DEFAULT '',
	language             text NOT NULL DEFAULT 'tr'
);
`

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

const recordColumns = `record_id, record_type, plate, work_order, vin, vin_last5, reference_no,
	case_key, note_text, files, user_id, branch_code, created_by_name, created_by_role,
	status, reject_reason, created_at, updated_at`

func scanRecord(row pgx.Row) (models.Record, error) {
	var rec models.Record
	var files []byte
	err := row.Scan(&rec.RecordID, &rec.RecordType, &rec.Plate, &rec.WorkOrder, &rec.VIN,
		&rec.VINLast5, &rec.ReferenceNo, &rec.CaseKey, &rec.NoteText, &files, &rec.UserID,
		&rec.BranchCode, &rec.CreatedByName, &rec.CreatedByRole, &rec.Status,
		&rec.RejectReason, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return models.Record{}, err
	}
	if err := json.Unmarshal(files, &rec.Files); err != nil {
		return models.Record{}, fmt.Errorf("decode files: %w", err)
	}
	if rec.Files == nil {
		rec.Files = []models.FileItem{}
	}
	return rec, nil
}

func (s *Store) CreateRecord(ctx context.Context, input store.CreateRecordInput) (models.Record, error) {
	if err := store.ValidateRecord(input); err != nil {
		return models.Record{}, err
	}
	branchCode, err := store.ResolveBranch(input.Creator, input.BranchCode, input.RecordType, input.WorkOrder)
	if err != nil {
		return models.Record{}, err
	}

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	rec := models.Record{
		RecordID:      uuid.NewString(),
		RecordType:    input.RecordType,
		Plate:         input.Plate,
		WorkOrder:     input.WorkOrder,
		VIN:           input.VIN,
		VINLast5:      store.VINLast5(input.VIN),
		ReferenceNo:   input.ReferenceNo,
		CaseKey:       store.CaseKey(createdAt, input.RecordType, branchCode, input.Plate, input.WorkOrder, input.VIN, input.ReferenceNo),
		NoteText:      input.NoteText,
		Files:         []models.FileItem{},
		UserID:        input.Creator.UserID,
		BranchCode:    branchCode,
		CreatedByName: input.Creator.FullName,
		CreatedByRole: input.Creator.Role,
		Status:        store.InitialStatus(input.Creator),
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Record{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO records (
			record_id, record_type, plate, work_order, vin, vin_last5, reference_no,
			case_key, note_text, files, user_id, branch_code, created_by_name,
			created_by_role, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'[]'::jsonb,$10,$11,$12,$13,$14,$15,$15)
	`, rec.RecordID, rec.RecordType, rec.Plate, rec.WorkOrder, rec.VIN, rec.VINLast5,
		rec.ReferenceNo, rec.CaseKey, rec.NoteText, rec.UserID, rec.BranchCode,
		rec.CreatedByName, rec.CreatedByRole, rec.Status, rec.CreatedAt)
	if err != nil {
		return models.Record{}, err
	}

	if rec.Status == models.StatusPendingReview {
		if err = fanOutNewRecord(ctx, tx, rec); err != nil {
			return models.Record{}, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

// fanOutNewRecord inserts one new_record notification per staff user of
// the record's branch, in the same transaction as the record itself.
func fanOutNewRecord(ctx context.Context, tx pgx.Tx, rec models.Record) error {
	rows, err := tx.Query(ctx, `
		SELECT user_id, full_name
		FROM users
		WHERE role = $1 AND branch_code = $2
	`, models.RoleStaff, rec.BranchCode)
	if err != nil {
		return err
	}
	defer rows.Close()

	type recipient struct {
		id   string
		name string
	}
	var recipients []recipient
	for rows.Next() {
		var r recipient
		if err := rows.Scan(&r.id, &r.name); err != nil {
			return err
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	message := fmt.Sprintf("New %s record %s awaiting review", rec.RecordType, rec.CaseKey)
	for _, r := range recipients {
		_, err := tx.Exec(ctx, `
			INSERT INTO notifications (
				notification_id, record_id, sender_id, sender_name,
				recipient_id, recipient_name, notification_type, message, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		`, uuid.NewString(), rec.RecordID, rec.UserID, rec.CreatedByName,
			r.id, r.name, models.NotifNewRecord, message, rec.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) GetRecord(ctx context.Context, recordID string) (models.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE record_id = $1 AND status <> $2
	`, recordID, models.StatusDeleted)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Record{}, store.ErrRecordNotFound
		}
		return models.Record{}, err
	}
	return rec, nil
}

var sortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"plate":       "plate",
	"work_order":  "work_order",
	"case_key":    "case_key",
	"record_type": "record_type",
	"status":      "status",
}

// escapeLike neutralizes LIKE metacharacters so search terms match as
// plain substrings.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *Store) ListRecords(ctx context.Context, input store.ListRecordsInput) ([]models.Record, error) {
	where := []string{"status <> $1"}
	args := []interface{}{models.StatusDeleted}

	if input.Status != "" && input.Status != models.StatusDeleted {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.RecordType != "" {
		args = append(args, input.RecordType)
		where = append(where, fmt.Sprintf("record_type = $%d", len(args)))
	}
	if input.BranchCode != "" {
		args = append(args, input.BranchCode)
		where = append(where, fmt.Sprintf("branch_code = $%d", len(args)))
	}
	if input.Search != "" {
		args = append(args, "%"+escapeLike(input.Search)+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(plate ILIKE $%d OR work_order ILIKE $%d OR vin ILIKE $%d OR vin_last5 ILIKE $%d OR reference_no ILIKE $%d OR case_key ILIKE $%d)",
			n, n, n, n, n, n))
	}
	if input.Year > 0 {
		args = append(args, input.Year)
		n := len(args)
		where = append(where, fmt.Sprintf("created_at >= make_date($%d, 1, 1) AND created_at < make_date($%d + 1, 1, 1)", n, n))
	}

	sortBy, ok := sortColumns[input.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(input.SortOrder, "asc") {
		direction = "ASC"
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := input.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	// record_id breaks sort-field ties so pages are stable.
	query := fmt.Sprintf(`
		SELECT %s
		FROM records
		WHERE %s
		ORDER BY %s %s, record_id
		LIMIT $%d OFFSET $%d
	`, recordColumns, strings.Join(where, " AND "), sortBy, direction, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) UpdateNote(ctx context.Context, recordID, noteText string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE records
		SET note_text = $2, updated_at = $3
		WHERE record_id = $1 AND status <> $4
	`, recordID, noteText, time.Now().UTC(), models.StatusDeleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteRecord is terminal; the scoped predicate makes deleting an
// already-deleted record indistinguishable from a missing one.
func (s *Store) SoftDeleteRecord(ctx context.Context, recordID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE records
		SET status = $2, updated_at = $3
		WHERE record_id = $1 AND status = ANY($4)
	`, recordID, models.StatusDeleted, time.Now().UTC(), store.TransitionSources("delete"))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

func (s *Store) ApproveRecord(ctx context.Context, input store.ReviewInput) (models.Record, error) {
	return s.review(ctx, input, models.StatusApproved)
}

func (s *Store) RejectRecord(ctx context.Context, input store.ReviewInput) (models.Record, error) {
	return s.review(ctx, input, models.StatusRejected)
}

// review performs the single-fire transition out of pending_review.
// Only the first approve or reject matches the conditional update;
// racing callers see ErrRecordNotFound, same as a record outside their
// branch scope.
func (s *Store) review(ctx context.Context, input store.ReviewInput, target string) (models.Record, error) {
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.Record{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	action := "approve"
	if target == models.StatusRejected {
		action = "reject"
	}
	row := tx.QueryRow(ctx, `
		UPDATE records
		SET status = $2, reject_reason = $3, updated_at = $4
		WHERE record_id = $1
		  AND status = ANY($5)
		  AND ($6 = '' OR branch_code = $6)
		RETURNING `+recordColumns+`
	`, input.RecordID, target, input.Reason, occurredAt, store.TransitionSources(action), input.BranchCode)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrRecordNotFound
		}
		return models.Record{}, err
	}

	notifType := models.NotifRecordApproved
	message := fmt.Sprintf("Record %s approved", rec.CaseKey)
	if target == models.StatusRejected {
		notifType = models.NotifRecordRejected
		message = fmt.Sprintf("Record %s rejected", rec.CaseKey)
		if input.Reason != "" {
			message = fmt.Sprintf("Record %s rejected: %s", rec.CaseKey, input.Reason)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO notifications (
			notification_id, record_id, sender_id, sender_name,
			recipient_id, recipient_name, notification_type, message, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, uuid.NewString(), rec.RecordID, input.Reviewer.UserID, input.Reviewer.FullName,
		rec.UserID, rec.CreatedByName, notifType, message, occurredAt)
	if err != nil {
		return models.Record{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Record{}, err
	}
	return rec, nil
}

// AppendFile relies on jsonb concatenation so concurrent uploads to the
// same record never lose a descriptor.
func (s *Store) AppendFile(ctx context.Context, recordID string, item models.FileItem) error {
	payload, err := json.Marshal([]models.FileItem{item})
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE records
		SET files = files || $2::jsonb, updated_at = $3
		WHERE record_id = $1 AND status <> $4
	`, recordID, payload, time.Now().UTC(), models.StatusDeleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrRecordNotFound
	}
	return nil
}

func (s *Store) RemoveFile(ctx context.Context, recordID, fileID string) (models.FileItem, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return models.FileItem{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var raw []byte
	row := tx.QueryRow(ctx, `
		SELECT files
		FROM records
		WHERE record_id = $1 AND status <> $2
		FOR UPDATE
	`, recordID, models.StatusDeleted)
	if err = row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = store.ErrRecordNotFound
		}
		return models.FileItem{}, err
	}

	var files []models.FileItem
	if err = json.Unmarshal(raw, &files); err != nil {
		return models.FileItem{}, err
	}

	var removed models.FileItem
	kept := make([]models.FileItem, 0, len(files))
	found := false
	for _, f := range files {
		if f.FileID == fileID {
			removed = f
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		err = store.ErrFileNotFound
		return models.FileItem{}, err
	}

	payload, err := json.Marshal(kept)
	if err != nil {
		return models.FileItem{}, err
	}
	_, err = tx.Exec(ctx, `
		UPDATE records
		SET files = $2::jsonb, updated_at = $3
		WHERE record_id = $1
	`, recordID, payload, time.Now().UTC())
	if err != nil {
		return models.FileItem{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return models.FileItem{}, err
	}
	return removed, nil
}

const userColumns = `user_id, username, full_name, role, branch_code, job_title, phone, email, is_online, last_seen, created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	var lastSeen sql.NullTime
	err := row.Scan(&user.UserID, &user.Username, &user.FullName, &user.Role, &user.BranchCode,
		&user.JobTitle, &user.Phone, &user.Email, &user.IsOnline, &lastSeen, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	if lastSeen.Valid {
		user.LastSeen = &lastSeen.Time
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, input store.CreateUserInput) (models.User, error) {
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return models.User{}, err
	}

	userID := uuid.NewString()
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (user_id, username, password_hash, full_name, role, branch_code, job_title, phone, email)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+userColumns+`
	`, userID, input.Username, hash, input.FullName, input.Role, input.BranchCode,
		input.JobTitle, input.Phone, input.Email)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, store.ErrUsernameTaken
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var passwordHash string
	var user models.User
	var lastSeen sql.NullTime
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, username, password_hash, full_name, role, branch_code, job_title, phone, email, is_online, last_seen, created_at
		FROM users
		WHERE username = $1
	`, username)
	err := row.Scan(&user.UserID, &user.Username, &passwordHash, &user.FullName, &user.Role,
		&user.BranchCode, &user.JobTitle, &user.Phone, &user.Email, &user.IsOnline, &lastSeen, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !auth.CheckPassword(passwordHash, password) {
		return models.User{}, store.ErrInvalidCredentials
	}
	if lastSeen.Valid {
		user.LastSeen = &lastSeen.Time
	}

	if err := s.SetOnline(ctx, user.UserID, true); err != nil {
		return models.User{}, err
	}
	user.IsOnline = true
	return user, nil
}

func (s *Store) SetOnline(ctx context.Context, userID string, online bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users
		SET is_online = $2, last_seen = $3
		WHERE user_id = $1
	`, userID, online, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (s *Store) ListStaff(ctx context.Context, includeApprentices bool) ([]models.User, error) {
	roles := []string{models.RoleStaff}
	if includeApprentices {
		roles = append(roles, models.RoleApprentice)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = ANY($1)
		ORDER BY branch_code, full_name
	`, roles)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) ListApprentices(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE role = $1
		ORDER BY branch_code, full_name
	`, models.RoleApprentice)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) UpdateStaff(ctx context.Context, input store.UpdateStaffInput) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users
		SET full_name = COALESCE(NULLIF($2, ''), full_name),
		    branch_code = COALESCE(NULLIF($3, ''), branch_code),
		    job_title = COALESCE(NULLIF($4, ''), job_title)
		WHERE user_id = $1 AND role <> $5
		RETURNING `+userColumns+`
	`, input.UserID, input.FullName, input.BranchCode, input.JobTitle, models.RoleAdmin)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// DeleteStaff hard-deletes a staff or apprentice row. Admin rows never
// match, so targeting one reports not found.
func (s *Store) DeleteStaff(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM users
		WHERE user_id = $1 AND role <> $2
	`, userID, models.RoleAdmin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func (s *Store) EnsureAdmin(ctx context.Context, username, password, fullName string) error {
	var exists bool
	row := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username)
	if err := row.Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (user_id, username, password_hash, full_name, role)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (username) DO NOTHING
	`, uuid.NewString(), username, hash, fullName, models.RoleAdmin)
	return err
}

func (s *Store) CreateNotification(ctx context.Context, input store.CreateNotificationInput) (models.Notification, error) {
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	n := models.Notification{
		NotificationID:   uuid.NewString(),
		RecordID:         input.RecordID,
		SenderID:         input.Sender.UserID,
		SenderName:       input.Sender.FullName,
		RecipientID:      input.RecipientID,
		RecipientName:    input.RecipientName,
		NotificationType: input.Type,
		Message:          input.Message,
		CreatedAt:        createdAt,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (
			notification_id, record_id, sender_id, sender_name,
			recipient_id, recipient_name, notification_type, message, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, n.NotificationID, n.RecordID, n.SenderID, n.SenderName,
		n.RecipientID, n.RecipientName, n.NotificationType, n.Message, n.CreatedAt)
	if err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

func (s *Store) ListNotifications(ctx context.Context, recipientID string, limit int) ([]models.Notification, int, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT notification_id, record_id, sender_id, sender_name, recipient_id,
		       recipient_name, notification_type, message, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, recipientID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.NotificationID, &n.RecordID, &n.SenderID, &n.SenderName,
			&n.RecipientID, &n.RecipientName, &n.NotificationType, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var unread int
	row := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read
	`, recipientID)
	if err := row.Scan(&unread); err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, notificationID, recipientID string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = true
		WHERE notification_id = $1 AND recipient_id = $2
	`, notificationID, recipientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotificationNotFound
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, recipientID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = true
		WHERE recipient_id = $1 AND NOT is_read
	`, recipientID)
	return err
}

const settingsColumns = `settings_id, ocr_provider, vision_api_key, voice_provider, openai_api_key,
	storage_type, ftp_host, ftp_user, ftp_password, aws_access_key, aws_secret_key, aws_bucket,
	aws_region, gdrive_client_id, gdrive_client_secret, onedrive_client_id, onedrive_client_secret, language`

func scanSettings(row pgx.Row) (models.Settings, error) {
	var st models.Settings
	err := row.Scan(&st.SettingsID, &st.OCRProvider, &st.VisionAPIKey, &st.VoiceProvider,
		&st.OpenAIAPIKey, &st.StorageType, &st.FTPHost, &st.FTPUser, &st.FTPPassword,
		&st.AWSAccessKey, &st.AWSSecretKey, &st.AWSBucket, &st.AWSRegion,
		&st.GDriveClientID, &st.GDriveClientSecret, &st.OneDriveClientID,
		&st.OneDriveClientSecret, &st.Language)
	if err != nil {
		return models.Settings{}, err
	}
	return st, nil
}

// GetSettings returns the singleton, creating the default row on first
// use.
func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+settingsColumns+` FROM settings LIMIT 1`)
	st, err := scanSettings(row)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return models.Settings{}, err
	}

	row = s.pool.QueryRow(ctx, `
		INSERT INTO settings (settings_id) VALUES ($1)
		RETURNING `+settingsColumns+`
	`, uuid.NewString())
	return scanSettings(row)
}

// UpdateSettings merges non-empty fields over the stored singleton.
func (s *Store) UpdateSettings(ctx context.Context, update models.Settings) (models.Settings, error) {
	current, err := s.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}

	merge := func(value, fallback string) string {
		if value != "" {
			return value
		}
		return fallback
	}

	merged := models.Settings{
		SettingsID:           current.SettingsID,
		OCRProvider:          merge(update.OCRProvider, current.OCRProvider),
		VisionAPIKey:         merge(update.VisionAPIKey, current.VisionAPIKey),
		VoiceProvider:        merge(update.VoiceProvider, current.VoiceProvider),
		OpenAIAPIKey:         merge(update.OpenAIAPIKey, current.OpenAIAPIKey),
		StorageType:          merge(update.StorageType, current.StorageType),
		FTPHost:              merge(update.FTPHost, current.FTPHost),
		FTPUser:              merge(update.FTPUser, current.FTPUser),
		FTPPassword:          merge(update.FTPPassword, current.FTPPassword),
		AWSAccessKey:         merge(update.AWSAccessKey, current.AWSAccessKey),
		AWSSecretKey:         merge(update.AWSSecretKey, current.AWSSecretKey),
		AWSBucket:            merge(update.AWSBucket, current.AWSBucket),
		AWSRegion:            merge(update.AWSRegion, current.AWSRegion),
		GDriveClientID:       merge(update.GDriveClientID, current.GDriveClientID),
		GDriveClientSecret:   merge(update.GDriveClientSecret, current.GDriveClientSecret),
		OneDriveClientID:     merge(update.OneDriveClientID, current.OneDriveClientID),
		OneDriveClientSecret: merge(update.OneDriveClientSecret, current.OneDriveClientSecret),
		Language:             merge(update.Language, current.Language),
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE settings
		SET ocr_provider = $2, vision_api_key = $3, voice_provider = $4, openai_api_key = $5,
		    storage_type = $6, ftp_host = $7, ftp_user = $8, ftp_password = $9,
		    aws_access_key = $10, aws_secret_key = $11, aws_bucket = $12, aws_region = $13,
		    gdrive_client_id = $14, gdrive_client_secret = $15,
		    onedrive_client_id = $16, onedrive_client_secret = $17, language = $18
		WHERE settings_id = $1
		RETURNING `+settingsColumns+`
	`, merged.SettingsID, merged.OCRProvider, merged.VisionAPIKey, merged.VoiceProvider,
		merged.OpenAIAPIKey, merged.StorageType, merged.FTPHost, merged.FTPUser,
		merged.FTPPassword, merged.AWSAccessKey, merged.AWSSecretKey, merged.AWSBucket,
		merged.AWSRegion, merged.GDriveClientID, merged.GDriveClientSecret,
		merged.OneDriveClientID, merged.OneDriveClientSecret, merged.Language)
	return scanSettings(row)
}

func (s *Store) GetStats(ctx context.Context) (store.Stats, error) {
	stats := store.Stats{}

	rows, err := s.pool.Query(ctx, `
		SELECT record_type, COUNT(*)
		FROM records
		WHERE status <> $1
		GROUP BY record_type
	`, models.StatusDeleted)
	if err != nil {
		return store.Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var recordType string
		var count int
		if err := rows.Scan(&recordType, &count); err != nil {
			return store.Stats{}, err
		}
		stats.Total += count
		applyTypeCount(&stats.ByType, recordType, count)
	}
	if err := rows.Err(); err != nil {
		return store.Stats{}, err
	}

	recordsByBranch, err := s.countByBranch(ctx, `
		SELECT branch_code, COUNT(*)
		FROM records
		WHERE status <> $1
		GROUP BY branch_code
	`, models.StatusDeleted)
	if err != nil {
		return store.Stats{}, err
	}

	type staffCounts struct {
		total  int
		online int
		names  []string
	}
	staffByBranch := map[string]*staffCounts{}
	staffRows, err := s.pool.Query(ctx, `
		SELECT branch_code, full_name, is_online
		FROM users
		WHERE role = ANY($1)
		ORDER BY full_name
	`, []string{models.RoleStaff, models.RoleApprentice})
	if err != nil {
		return store.Stats{}, err
	}
	defer staffRows.Close()
	for staffRows.Next() {
		var code, name string
		var online bool
		if err := staffRows.Scan(&code, &name, &online); err != nil {
			return store.Stats{}, err
		}
		counts := staffByBranch[code]
		if counts == nil {
			counts = &staffCounts{}
			staffByBranch[code] = counts
		}
		counts.total++
		if online {
			counts.online++
		}
		counts.names = append(counts.names, name)
	}
	if err := staffRows.Err(); err != nil {
		return store.Stats{}, err
	}

	for _, b := range branch.All() {
		bs := store.BranchStats{Code: b.Code, Name: b.Name, Staff: []string{}}
		bs.TotalRecords = recordsByBranch[b.Code]
		if counts := staffByBranch[b.Code]; counts != nil {
			bs.StaffCount = counts.total
			bs.OnlineCount = counts.online
			bs.Staff = counts.names
		}
		stats.Branches = append(stats.Branches, bs)
	}

	recent, err := s.ListRecords(ctx, store.ListRecordsInput{Limit: 5})
	if err != nil {
		return store.Stats{}, err
	}
	stats.Recent = recent
	return stats, nil
}

func (s *Store) GetMyStats(ctx context.Context, branchCode string) (store.MyStats, error) {
	stats := store.MyStats{BranchName: branch.Name(branchCode)}

	rows, err := s.pool.Query(ctx, `
		SELECT record_type, status, COUNT(*)
		FROM records
		WHERE branch_code = $1 AND status <> $2
		GROUP BY record_type, status
	`, branchCode, models.StatusDeleted)
	if err != nil {
		return store.MyStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var recordType, status string
		var count int
		if err := rows.Scan(&recordType, &status, &count); err != nil {
			return store.MyStats{}, err
		}
		stats.Total += count
		applyTypeCount(&stats.ByType, recordType, count)
		if status == models.StatusPendingReview {
			stats.PendingCount += count
		}
	}
	return stats, rows.Err()
}

func (s *Store) countByBranch(ctx context.Context, query string, args ...interface{}) (map[string]int, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var code string
		var count int
		if err := rows.Scan(&code, &count); err != nil {
			return nil, err
		}
		out[code] = count
	}
	return out, rows.Err()
}

func applyTypeCount(counts *store.TypeCounts, recordType string, count int) {
	switch recordType {
	case models.TypeStandard:
		counts.Standard += count
	case models.TypeRoadAssist:
		counts.RoadAssist += count
	case models.TypeDamaged:
		counts.Damaged += count
	case models.TypePDI:
		counts.PDI += count
	}
}

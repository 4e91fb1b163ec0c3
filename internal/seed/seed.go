// Package seed bootstraps an empty database from the legacy spreadsheet
// exports. Column names follow the old export format so existing files
// keep working; when a file is missing, a small built-in data set is
// loaded instead so the service always starts usable.
package seed

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/service-desk/internal/auth"
	"github.com/spec-kit/service-desk/internal/config"
	"github.com/spec-kit/service-desk/internal/domain"
	"github.com/spec-kit/service-desk/internal/repository"
)

const defaultPassword = "password123"

// roleAliases maps spreadsheet role labels (legacy Russian labels and
// plain enum names) to roles. Unknown labels fall back to CLIENT.
var roleAliases = map[string]domain.Role{
	"менеджер":      domain.RoleManager,
	"администратор": domain.RoleAdministrator,
	"специалист":    domain.RoleTechnician,
	"оператор":      domain.RoleOperator,
	"заказчик":      domain.RoleClient,
	"administrator": domain.RoleAdministrator,
	"manager":       domain.RoleManager,
	"operator":      domain.RoleOperator,
	"technician":    domain.RoleTechnician,
	"client":        domain.RoleClient,
}

// statusAliases maps spreadsheet status labels to statuses. Unknown
// labels fall back to NEW.
var statusAliases = map[string]domain.RequestStatus{
	"новая заявка":       domain.StatusNew,
	"в процессе ремонта": domain.StatusInRepair,
	"завершена":          domain.StatusCompleted,
	"завершено":          domain.StatusCompleted,
	"ожидание запчастей": domain.StatusAwaitingParts,
	"new":                domain.StatusNew,
	"in_repair":          domain.StatusInRepair,
	"completed":          domain.StatusCompleted,
	"awaiting_parts":     domain.StatusAwaitingParts,
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06",
	"01/02/2006 15:04",
	time.RFC3339,
}

// Seeder loads the initial data set on first startup.
type Seeder struct {
	cfg         config.SeedConfig
	bcryptCost  int
	users       repository.UserRepository
	technicians repository.TechnicianRepository
	requests    repository.RequestRepository
	logger      *zap.Logger
}

// NewSeeder constructs a seeder.
func NewSeeder(
	cfg config.SeedConfig,
	bcryptCost int,
	users repository.UserRepository,
	technicians repository.TechnicianRepository,
	requests repository.RequestRepository,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		cfg:         cfg,
		bcryptCost:  bcryptCost,
		users:       users,
		technicians: technicians,
		requests:    requests,
		logger:      logger,
	}
}

// Run seeds users, technicians and requests when the user table is
// empty. A populated database is left untouched.
func (s *Seeder) Run(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.logger.Info("seed disabled")
		return nil
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("seed skipped, users already present", zap.Int64("count", count))
		return nil
	}

	if err := s.importUsers(ctx); err != nil {
		return err
	}
	return s.importRequests(ctx)
}

func (s *Seeder) importUsers(ctx context.Context) error {
	rows, headers, err := readSheet(s.cfg.UsersFile)
	if err != nil {
		s.logger.Warn("users spreadsheet unavailable, loading defaults",
			zap.String("file", s.cfg.UsersFile), zap.Error(err))
		return s.createDefaultUsers(ctx)
	}

	imported := 0
	for i, row := range rows {
		login := cell(row, headers, "login")
		if login == "" {
			continue
		}
		password := cell(row, headers, "password")
		if password == "" {
			password = defaultPassword
		}
		role := roleFromLabel(cell(row, headers, "type"))
		fullName := cell(row, headers, "fio")
		if fullName == "" {
			fullName = login
		}
		phone := cell(row, headers, "phone")

		if err := s.createUser(ctx, login, password, fullName, phone, role); err != nil {
			s.logger.Warn("seed user failed", zap.Int("row", i+2), zap.String("login", login), zap.Error(err))
		} else {
			imported++
		}
	}
	s.logger.Info("seeded users from spreadsheet",
		zap.String("file", s.cfg.UsersFile), zap.Int("imported", imported))
	return nil
}

func (s *Seeder) createUser(ctx context.Context, login, password, fullName, phone string, role domain.Role) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	user := &domain.User{
		Login:        login,
		PasswordHash: hash,
		FullName:     fullName,
		Phone:        phone,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// Technician accounts also get a directory entry so assignment and
	// list scoping can resolve them.
	if role == domain.RoleTechnician {
		techLogin := login
		tech := &domain.Technician{
			FullName:  fullName,
			Phone:     phone,
			Login:     &techLogin,
			Specialty: "Специалист",
		}
		if err := s.technicians.Create(ctx, tech); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
	}
	return nil
}

func (s *Seeder) createDefaultUsers(ctx context.Context) error {
	defaults := []struct {
		login, password, fullName, phone string
		role                             domain.Role
	}{
		{"admin", "admin123", "Администратор Системы", "88001234567", domain.RoleAdministrator},
		{"manager1", "manager123", "Менеджер 1", "89501112233", domain.RoleManager},
		{"tech1", "tech123", "Мастер 1", "89502223344", domain.RoleTechnician},
		{"tech2", "tech123", "Мастер 2", "89503334455", domain.RoleTechnician},
		{"operator1", "operator123", "Оператор 1", "89504445566", domain.RoleOperator},
		{"client1", "client123", "Клиент 1", "89151234567", domain.RoleClient},
		{"client2", "client123", "Клиент 2", "89152345678", domain.RoleClient},
	}
	for _, d := range defaults {
		if err := s.createUser(ctx, d.login, d.password, d.fullName, d.phone, d.role); err != nil {
			return err
		}
	}
	s.logger.Info("seeded default users", zap.Int("count", len(defaults)))
	return nil
}

func (s *Seeder) importRequests(ctx context.Context) error {
	rows, headers, err := readSheet(s.cfg.RequestsFile)
	if err != nil {
		s.logger.Warn("requests spreadsheet unavailable, loading sample requests",
			zap.String("file", s.cfg.RequestsFile), zap.Error(err))
		return s.createSampleRequests(ctx)
	}

	// Pass 1: build the technician directory from the master columns.
	techIDByLogin := map[string]int64{}
	for _, row := range rows {
		login := cell(row, headers, "master_login")
		if login == "" {
			continue
		}
		if _, seen := techIDByLogin[login]; seen {
			continue
		}
		id, err := s.ensureTechnician(ctx,
			login,
			cell(row, headers, "master_fio"),
			cell(row, headers, "master_phone"),
			cell(row, headers, "master_type"),
		)
		if err != nil {
			s.logger.Warn("seed technician failed", zap.String("login", login), zap.Error(err))
			continue
		}
		techIDByLogin[login] = id
	}

	// Pass 2: requests, keeping their original numbers.
	imported := 0
	for i, row := range rows {
		number, err := strconv.ParseInt(cell(row, headers, "request_id"), 10, 64)
		if err != nil {
			continue
		}

		req := &domain.ServiceRequest{
			Number:             number,
			CreatedAt:          parseTimeOr(cell(row, headers, "start_date"), time.Now()),
			EquipmentType:      cell(row, headers, "tech_type"),
			EquipmentModel:     cell(row, headers, "tech_model"),
			ProblemDescription: cell(row, headers, "problem_description"),
			Status:             statusFromLabel(cell(row, headers, "request_status")),
			RepairParts:        cell(row, headers, "repair_parts"),
			CommentText:        cell(row, headers, "comment_message"),
			TechnicianName:     cell(row, headers, "master_fio"),
			TechnicianPhone:    cell(row, headers, "master_phone"),
			ClientName:         cell(row, headers, "client_fio"),
			ClientPhone:        cell(row, headers, "client_phone"),
			ClientLogin:        cell(row, headers, "client_login"),
		}
		req.HasComment = parseBool(cell(row, headers, "has_comment")) || req.CommentText != ""
		if completed, err := parseTime(cell(row, headers, "completion_date")); err == nil {
			req.CompletedAt = &completed
		}
		if days, err := strconv.Atoi(cell(row, headers, "days_in_process")); err == nil {
			req.DaysInProgress = &days
		}
		if id, ok := techIDByLogin[cell(row, headers, "master_login")]; ok {
			req.TechnicianID = &id
		}

		if err := s.requests.Insert(ctx, req); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue // number already present
			}
			s.logger.Warn("seed request failed", zap.Int("row", i+2), zap.Int64("number", number), zap.Error(err))
			continue
		}
		imported++
	}
	s.logger.Info("seeded requests from spreadsheet",
		zap.String("file", s.cfg.RequestsFile), zap.Int("imported", imported))
	return nil
}

// ensureTechnician inserts a directory entry, or resolves the id when
// the login is already present from the user import pass.
func (s *Seeder) ensureTechnician(ctx context.Context, login, fullName, phone, specialty string) (int64, error) {
	if specialty == "" {
		specialty = "Специалист"
	}
	techLogin := login
	tech := &domain.Technician{
		FullName:  fullName,
		Phone:     phone,
		Login:     &techLogin,
		Specialty: specialty,
	}
	err := s.technicians.Create(ctx, tech)
	if err == nil {
		return tech.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	existing, err := s.technicians.GetByLogin(ctx, login)
	if err != nil {
		return 0, err
	}
	return existing.ID, nil
}

func (s *Seeder) createSampleRequests(ctx context.Context) error {
	techID, err := s.ensureTechnician(ctx, "tech1", "Мастер 1", "89502223344", "Специалист")
	if err != nil {
		return err
	}

	samples := []*domain.ServiceRequest{
		{
			Number:             1,
			CreatedAt:          time.Now().AddDate(0, 0, -14),
			EquipmentType:      "Кондиционер",
			EquipmentModel:     "TCL TAC-12CHSA",
			ProblemDescription: "Не охлаждает воздух",
			Status:             domain.StatusInRepair,
			HasComment:         true,
			CommentText:        "Всё сделаем!",
			TechnicianID:       &techID,
			TechnicianName:     "Мастер 1",
			TechnicianPhone:    "89502223344",
			ClientName:         "Клиент 1",
			ClientPhone:        "89151234567",
			ClientLogin:        "client1",
		},
		{
			Number:             2,
			CreatedAt:          time.Now().AddDate(0, 0, -3),
			EquipmentType:      "Холодильник",
			EquipmentModel:     "Atlant XM-4214",
			ProblemDescription: "Не морозит верхняя камера",
			Status:             domain.StatusNew,
			ClientName:         "Клиент 2",
			ClientPhone:        "89152345678",
			ClientLogin:        "client2",
		},
	}
	for _, req := range samples {
		if err := s.requests.Insert(ctx, req); err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
	}
	s.logger.Info("seeded sample requests", zap.Int("count", len(samples)))
	return nil
}

// readSheet opens the first sheet of an xlsx file and returns its data
// rows plus a lowercased header-name index.
func readSheet(path string) ([][]string, map[string]int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("sheet is empty")
	}

	headers := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		headers[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return rows[1:], headers, nil
}

func cell(row []string, headers map[string]int, name string) string {
	idx, ok := headers[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func roleFromLabel(label string) domain.Role {
	if role, ok := roleAliases[strings.ToLower(strings.TrimSpace(label))]; ok {
		return role
	}
	return domain.RoleClient
}

func statusFromLabel(label string) domain.RequestStatus {
	if status, ok := statusAliases[strings.ToLower(strings.TrimSpace(label))]; ok {
		return status
	}
	return domain.StatusNew
}

func parseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty time value")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("unrecognized time format: " + value)
}

func parseTimeOr(value string, fallback time.Time) time.Time {
	if t, err := parseTime(value); err == nil {
		return t
	}
	return fallback
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && parsed
}

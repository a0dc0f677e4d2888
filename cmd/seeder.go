package cmd

import (
	"fmt"
	"log"

	projectDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/project"
	referenceDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/reference"
	userDatamodel "github.com/frahmantamala/business-management/internal/core/datamodel/user"
	"github.com/lib/pq"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// seedTables lists what --clear empties, children first.
var seedTables = []string{
	"files", "notifications", "dntt", "pyc", "project_items", "warehouses",
	"departments", "branches", "job_positions", "job_levels", "job_functions", "suppliers",
	"projects", "users",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configDir)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB, cfg.Observability.Logging.Level)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range seedTables {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		if err := seed(db); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
		fmt.Println("Sample data seeded successfully")
	},
}

// seed is idempotent: existing rows are left untouched.
func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ignore := tx.Clauses(clause.OnConflict{DoNothing: true})

		projects := []projectDatamodel.Project{
			{ID: "DA-001", Name: "Nhà xưởng Long An", Location: "Long An", Status: projectDatamodel.StatusActive},
			{ID: "DA-002", Name: "Chung cư Thủ Đức", Location: "TP. Hồ Chí Minh", Status: projectDatamodel.StatusPlanning},
		}
		if err := ignore.Create(&projects).Error; err != nil {
			return fmt.Errorf("projects: %w", err)
		}

		users := []userDatamodel.User{
			{Email: "admin@company.vn", FullName: "Quản trị hệ thống", AccessLevel: userDatamodel.AccessAdmin, WorkStatus: userDatamodel.WorkStatusActive, ProjectIDs: pq.StringArray{}},
			{Email: "giamdoc@company.vn", FullName: "Trần Văn Giám", Department: "Ban giám đốc", Position: "Giám đốc", AccessLevel: userDatamodel.AccessDirector, WorkStatus: userDatamodel.WorkStatusActive, ProjectIDs: pq.StringArray{"DA-001", "DA-002"}},
			{Email: "chihuy@company.vn", FullName: "Lê Thị Hữu", Department: "Thi công", Position: "Chỉ huy trưởng", AccessLevel: userDatamodel.AccessManager, WorkStatus: userDatamodel.WorkStatusActive, ProjectIDs: pq.StringArray{"DA-001"}},
			{Email: "nhanvien@company.vn", FullName: "Phạm Minh Nhân", Department: "Thi công", Position: "Kỹ sư", AccessLevel: userDatamodel.AccessStaff, WorkStatus: userDatamodel.WorkStatusActive, ProjectIDs: pq.StringArray{"DA-001"}},
		}
		if err := ignore.Create(&users).Error; err != nil {
			return fmt.Errorf("users: %w", err)
		}

		items := []projectDatamodel.Item{
			{ProjectID: "DA-001", WBS: "1", Name: "Phần móng", Unit: "m3", Quantity: 120},
			{ProjectID: "DA-001", WBS: "1.1", Name: "Bê tông lót", Unit: "m3", Quantity: 18.5},
			{ProjectID: "DA-001", WBS: "2", Name: "Kết cấu thép", Unit: "tấn", Quantity: 42},
		}
		var n int64
		if err := tx.Model(&projectDatamodel.Item{}).Where("project_id = ?", "DA-001").Count(&n).Error; err != nil {
			return fmt.Errorf("project items: %w", err)
		}
		if n == 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("project items: %w", err)
			}
		}

		branches := []referenceDatamodel.Branch{
			{Code: "HCM", Name: "Chi nhánh TP. Hồ Chí Minh"},
			{Code: "HN", Name: "Chi nhánh Hà Nội"},
		}
		if err := ignore.Create(&branches).Error; err != nil {
			return fmt.Errorf("branches: %w", err)
		}

		for _, d := range []struct{ code, name, parent string }{
			{"TC", "Phòng Thi công", ""},
			{"KT", "Phòng Kế toán", ""},
			{"TC-GS", "Tổ Giám sát", "TC"},
		} {
			row := referenceDatamodel.Department{Code: d.code, Name: d.name}
			if d.parent != "" {
				var parent referenceDatamodel.Department
				if err := tx.Where("code = ?", d.parent).Take(&parent).Error; err != nil {
					return fmt.Errorf("department parent %s: %w", d.parent, err)
				}
				row.ParentID = &parent.ID
			}
			if err := ignore.Create(&row).Error; err != nil {
				return fmt.Errorf("departments: %w", err)
			}
		}

		levels := []referenceDatamodel.JobLevel{
			{Code: "L1", Name: "Nhân viên"},
			{Code: "L2", Name: "Trưởng nhóm"},
			{Code: "L3", Name: "Trưởng phòng"},
		}
		if err := ignore.Create(&levels).Error; err != nil {
			return fmt.Errorf("job levels: %w", err)
		}

		project := "DA-001"
		warehouses := []referenceDatamodel.Warehouse{
			{Code: "K-LA", Name: "Kho công trường Long An", ProjectID: &project, Address: "KCN Long Hậu"},
		}
		if err := ignore.Create(&warehouses).Error; err != nil {
			return fmt.Errorf("warehouses: %w", err)
		}

		suppliers := []referenceDatamodel.Supplier{
			{Code: "NCC-HP", Name: "Thép Hòa Phát", TaxCode: "0900189284"},
		}
		if err := ignore.Create(&suppliers).Error; err != nil {
			return fmt.Errorf("suppliers: %w", err)
		}
		return nil
	})
}

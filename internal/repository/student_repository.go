package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jucampus/registrar-api/internal/models"
)

// ErrDuplicateKey marks unique-index violations so services can map them.
var ErrDuplicateKey = errors.New("duplicate key")

// StudentRepository provides access to the students collection.
type StudentRepository struct {
	col *mongo.Collection
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *mongo.Database) *StudentRepository {
	return &StudentRepository{col: db.Collection("students")}
}

// EnsureIndexes creates the indexes the query paths rely on.
func (r *StudentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "department", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create student indexes: %w", err)
	}
	return nil
}

// Insert persists a new registration.
func (r *StudentRepository) Insert(ctx context.Context, student *models.Student) error {
	if _, err := r.col.InsertOne(ctx, student); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert student: %w", ErrDuplicateKey)
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// FindByStudentID returns a record by its public student id.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	var student models.Student
	if err := r.col.FindOne(ctx, bson.M{"student_id": studentID}).Decode(&student); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("find student %s: %w", studentID, err)
	}
	return &student, nil
}

// FindByEmail returns a record by email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	var student models.Student
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&student); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
		return nil, fmt.Errorf("find student by email: %w", err)
	}
	return &student, nil
}

// List returns students matching the filter plus the total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	query := bson.M{}
	if filter.Department != "" {
		query["department"] = filter.Department
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	} else if filter.ExcludeVerified {
		query["status"] = bson.M{"$ne": models.StatusVerified}
	}
	if filter.HasPhoto != nil {
		if *filter.HasPhoto {
			query["photoUrl"] = bson.M{"$exists": true, "$ne": ""}
		} else {
			query["photoUrl"] = bson.M{"$in": bson.A{"", nil}}
		}
	}
	if filter.Search != "" {
		query["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": filter.Search, "$options": "i"}},
			bson.M{"student_id": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "registeredAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck

	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return nil, 0, fmt.Errorf("decode students: %w", err)
	}
	return students, int(total), nil
}

// ListAll streams every student in a department (empty means all) without paging.
func (r *StudentRepository) ListAll(ctx context.Context, department string) ([]models.Student, error) {
	query := bson.M{}
	if department != "" {
		query["department"] = department
	}
	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "registeredAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck

	var students []models.Student
	if err := cur.All(ctx, &students); err != nil {
		return nil, fmt.Errorf("decode students: %w", err)
	}
	return students, nil
}

// UpdateFields sets the given fields on a record and bumps updatedAt.
func (r *StudentRepository) UpdateFields(ctx context.Context, studentID string, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"student_id": studentID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update student %s: %w", studentID, err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetVerification replaces the verification map and status in one write.
func (r *StudentRepository) SetVerification(ctx context.Context, studentID string, verification map[string]models.VerificationEntry, status models.StudentStatus) error {
	return r.UpdateFields(ctx, studentID, bson.M{
		"verification": verification,
		"status":       status,
	})
}

// DepartmentCount is one aggregation row from DepartmentStats.
type DepartmentCount struct {
	Department string `bson:"_id"`
	Total      int    `bson:"total"`
	Pending    int    `bson:"pending"`
	Verified   int    `bson:"verified"`
}

// DepartmentStats aggregates per-department registration counts.
func (r *StudentRepository) DepartmentStats(ctx context.Context) ([]DepartmentCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$department",
			"total": bson.M{"$sum": 1},
			"pending": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusPending}}, 1, 0},
			}},
			"verified": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", models.StatusVerified}}, 1, 0},
			}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("department stats: %w", err)
	}
	defer cur.Close(ctx) //nolint:errcheck

	var rows []DepartmentCount
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode department stats: %w", err)
	}
	return rows, nil
}

// Departments returns the distinct department names present in the collection.
func (r *StudentRepository) Departments(ctx context.Context) ([]string, error) {
	values, err := r.col.Distinct(ctx, "department", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct departments: %w", err)
	}
	departments := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			departments = append(departments, s)
		}
	}
	return departments, nil
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aerolux/concierge-admin/internal/core/domain"
	"github.com/aerolux/concierge-admin/internal/core/ports"
)

const vendorsCollection = "vendors"

// VendorRepository implements ports.VendorRepository using MongoDB.
type VendorRepository struct {
	coll *mongo.Collection
}

func NewVendorRepository(db *mongo.Database) *VendorRepository {
	return &VendorRepository{coll: db.Collection(vendorsCollection)}
}

type vendorDocument struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Email              string             `bson:"email"`
	PasswordHash       string             `bson:"passwordHash"`
	BusinessName       string             `bson:"businessName"`
	ContactName        string             `bson:"contactName"`
	Phone              string             `bson:"phone,omitempty"`
	Description        string             `bson:"description,omitempty"`
	Website            string             `bson:"website,omitempty"`
	ServiceCategories  []string           `bson:"serviceCategories"`
	VerificationStatus string             `bson:"verificationStatus"`
	AccountStatus      string             `bson:"accountStatus"`
	AdminPanelAccess   bool               `bson:"adminPanelAccess"`
	VerifiedAt         *time.Time         `bson:"verifiedAt,omitempty"`
	VerifiedBy         string             `bson:"verifiedBy,omitempty"`
	RejectionReason    string             `bson:"rejectionReason,omitempty"`
	LastLogin          *time.Time         `bson:"lastLogin,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func newVendorDocument(v *domain.Vendor) vendorDocument {
	return vendorDocument{
		Email:              v.Email,
		PasswordHash:       v.PasswordHash,
		BusinessName:       v.BusinessName,
		ContactName:        v.ContactName,
		Phone:              v.Phone,
		Description:        v.Description,
		Website:            v.Website,
		ServiceCategories:  v.ServiceCategories,
		VerificationStatus: string(v.VerificationStatus),
		AccountStatus:      string(v.AccountStatus),
		AdminPanelAccess:   v.AdminPanelAccess,
		VerifiedAt:         v.VerifiedAt,
		VerifiedBy:         v.VerifiedBy,
		RejectionReason:    v.RejectionReason,
		LastLogin:          v.LastLogin,
		CreatedAt:          v.CreatedAt,
		UpdatedAt:          v.UpdatedAt,
	}
}

func (d *vendorDocument) toDomain() *domain.Vendor {
	categories := d.ServiceCategories
	if categories == nil {
		categories = []string{}
	}
	return &domain.Vendor{
		ID:                 d.ID.Hex(),
		Email:              d.Email,
		PasswordHash:       d.PasswordHash,
		BusinessName:       d.BusinessName,
		ContactName:        d.ContactName,
		Phone:              d.Phone,
		Description:        d.Description,
		Website:            d.Website,
		ServiceCategories:  categories,
		VerificationStatus: domain.VerificationStatus(d.VerificationStatus),
		AccountStatus:      domain.AccountStatus(d.AccountStatus),
		AdminPanelAccess:   d.AdminPanelAccess,
		VerifiedAt:         d.VerifiedAt,
		VerifiedBy:         d.VerifiedBy,
		RejectionReason:    d.RejectionReason,
		LastLogin:          d.LastLogin,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func (r *VendorRepository) Create(ctx context.Context, v *domain.Vendor) (*domain.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newVendorDocument(v)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrVendorExists
		}
		return nil, fmt.Errorf("insert vendor: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *VendorRepository) FindByEmail(ctx context.Context, email string) (*domain.Vendor, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *VendorRepository) FindByID(ctx context.Context, id string) (*domain.Vendor, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrVendorNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *VendorRepository) findOne(ctx context.Context, filter bson.M) (*domain.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc vendorDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVendorNotFound
		}
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *VendorRepository) List(ctx context.Context, f ports.VendorFilter) ([]*domain.Vendor, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.VerificationStatus != "" {
		filter["verificationStatus"] = f.VerificationStatus
	}
	if f.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"businessName": re},
			bson.M{"email": re},
		}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	var docs []vendorDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode vendors: %w", err)
	}

	vendors := make([]*domain.Vendor, 0, len(docs))
	for i := range docs {
		vendors = append(vendors, docs[i].toDomain())
	}
	return vendors, nil
}

// Save replaces the whole vendor document so that a lifecycle transition
// lands in a single write.
func (r *VendorRepository) Save(ctx context.Context, v *domain.Vendor) error {
	oid, err := primitive.ObjectIDFromHex(v.ID)
	if err != nil {
		return domain.ErrVendorNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := newVendorDocument(v)
	doc.ID = oid
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrVendorExists
		}
		return fmt.Errorf("save vendor: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrVendorNotFound
	}
	return nil
}

func (r *VendorRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrVendorNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"lastLogin": at}})
	return err
}

func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrVendorNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrVendorNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index and the directory index.
func (r *VendorRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "verificationStatus", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

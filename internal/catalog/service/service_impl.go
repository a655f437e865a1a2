package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/restock/internal/actorcontext"
	"github.com/smallbiznis/restock/internal/catalog/domain"
	"github.com/smallbiznis/restock/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func parseID(raw string) (int64, bool) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, false
	}
	return int64(id), true
}

func (s *Service) ProductTypeOptions(ctx context.Context) ([]domain.Option, error) {
	items, err := s.repo.ListProductTypes(ctx, s.db)
	if err != nil {
		return nil, err
	}
	opts := make([]domain.Option, 0, len(items))
	for _, item := range items {
		opts = append(opts, domain.Option{ID: formatID(item.ID), Name: item.Name, Slug: item.Slug})
	}
	return opts, nil
}

// BrandOptions narrows to one product type when a parent id is supplied.
// Unparseable parent ids yield an empty list rather than an error so a
// half-filled form never breaks the cascade.
func (s *Service) BrandOptions(ctx context.Context, productTypeID string) ([]domain.Option, error) {
	var parent *int64
	if strings.TrimSpace(productTypeID) != "" {
		id, ok := parseID(productTypeID)
		if !ok {
			return []domain.Option{}, nil
		}
		parent = &id
	}

	items, err := s.repo.ListBrands(ctx, s.db, parent)
	if err != nil {
		return nil, err
	}
	opts := make([]domain.Option, 0, len(items))
	for _, item := range items {
		opts = append(opts, domain.Option{ID: formatID(item.ID), Name: item.Name, Slug: item.Slug})
	}
	return opts, nil
}

func (s *Service) ModelOptions(ctx context.Context, productTypeID, brandID string) ([]domain.Option, error) {
	var typeFilter, brandFilter *int64
	if strings.TrimSpace(productTypeID) != "" {
		id, ok := parseID(productTypeID)
		if !ok {
			return []domain.Option{}, nil
		}
		typeFilter = &id
	}
	if strings.TrimSpace(brandID) != "" {
		id, ok := parseID(brandID)
		if !ok {
			return []domain.Option{}, nil
		}
		brandFilter = &id
	}

	items, err := s.repo.ListModels(ctx, s.db, typeFilter, brandFilter)
	if err != nil {
		return nil, err
	}
	opts := make([]domain.Option, 0, len(items))
	for _, item := range items {
		opts = append(opts, domain.Option{ID: formatID(item.ID), Name: item.Name, Slug: item.Slug})
	}
	return opts, nil
}

func (s *Service) ColorOptions(ctx context.Context) ([]domain.Option, error) {
	items, err := s.repo.ListColors(ctx, s.db)
	if err != nil {
		return nil, err
	}
	opts := make([]domain.Option, 0, len(items))
	for _, item := range items {
		opts = append(opts, domain.Option{ID: formatID(item.ID), Name: item.Name, Slug: item.Slug})
	}
	return opts, nil
}

func (s *Service) ConditionOptions(ctx context.Context) ([]domain.Option, error) {
	items, err := s.repo.ListConditions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	opts := make([]domain.Option, 0, len(items))
	for _, item := range items {
		quality := item.QualityPercentage
		opts = append(opts, domain.Option{
			ID:                formatID(item.ID),
			Name:              item.Name,
			Slug:              item.Slug,
			QualityPercentage: &quality,
		})
	}
	return opts, nil
}

func (s *Service) List(ctx context.Context, kind domain.Kind) ([]domain.Item, error) {
	switch kind {
	case domain.KindProductType:
		rows, err := s.repo.ListProductTypes(ctx, s.db)
		if err != nil {
			return nil, err
		}
		items := make([]domain.Item, 0, len(rows))
		for i := range rows {
			items = append(items, productTypeItem(&rows[i]))
		}
		return items, nil
	case domain.KindBrand:
		rows, err := s.repo.ListBrands(ctx, s.db, nil)
		if err != nil {
			return nil, err
		}
		items := make([]domain.Item, 0, len(rows))
		for i := range rows {
			items = append(items, brandItem(&rows[i]))
		}
		return items, nil
	case domain.KindModel:
		rows, err := s.repo.ListModels(ctx, s.db, nil, nil)
		if err != nil {
			return nil, err
		}
		items := make([]domain.Item, 0, len(rows))
		for i := range rows {
			items = append(items, modelItem(&rows[i]))
		}
		return items, nil
	case domain.KindColor:
		rows, err := s.repo.ListColors(ctx, s.db)
		if err != nil {
			return nil, err
		}
		items := make([]domain.Item, 0, len(rows))
		for i := range rows {
			items = append(items, colorItem(&rows[i]))
		}
		return items, nil
	case domain.KindCondition:
		rows, err := s.repo.ListConditions(ctx, s.db)
		if err != nil {
			return nil, err
		}
		items := make([]domain.Item, 0, len(rows))
		for i := range rows {
			items = append(items, conditionItem(&rows[i]))
		}
		return items, nil
	}
	return nil, domain.ErrInvalidKind
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Item, error) {
	if !domain.ValidKind(req.Kind) {
		return nil, domain.ErrInvalidKind
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	actor := actorcontext.ActorOrSystem(ctx)
	now := s.clock.Now()
	audit := domain.Audit{
		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
	}
	id := s.genID.Generate().Int64()
	nameSlug := slug.Make(name)

	switch req.Kind {
	case domain.KindProductType:
		exists, err := s.repo.ProductTypeNameExists(ctx, s.db, name, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateName
		}
		row := &domain.ProductType{ID: id, Name: name, Slug: nameSlug, SortOrder: req.SortOrder, IsActive: true, Audit: audit}
		if err := s.repo.SaveProductType(ctx, s.db, row); err != nil {
			return nil, err
		}
		s.log.Info("catalog entry created", zap.String("kind", string(req.Kind)), zap.Int64("id", id))
		item := productTypeItem(row)
		return &item, nil

	case domain.KindBrand:
		typeID, ok := parseID(req.ProductTypeID)
		if !ok {
			return nil, domain.ErrInvalidParent
		}
		parent, err := s.repo.FindProductTypeByID(ctx, s.db, typeID)
		if err != nil {
			return nil, err
		}
		if parent == nil || !parent.IsActive {
			return nil, domain.ErrInvalidParent
		}
		exists, err := s.repo.BrandNameExists(ctx, s.db, typeID, name, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateName
		}
		row := &domain.Brand{ID: id, ProductTypeID: typeID, Name: name, Slug: nameSlug, SortOrder: req.SortOrder, IsActive: true, Audit: audit}
		if err := s.repo.SaveBrand(ctx, s.db, row); err != nil {
			return nil, err
		}
		s.log.Info("catalog entry created", zap.String("kind", string(req.Kind)), zap.Int64("id", id))
		item := brandItem(row)
		return &item, nil

	case domain.KindModel:
		brandID, ok := parseID(req.BrandID)
		if !ok {
			return nil, domain.ErrInvalidParent
		}
		brand, err := s.repo.FindBrandByID(ctx, s.db, brandID)
		if err != nil {
			return nil, err
		}
		if brand == nil || !brand.IsActive {
			return nil, domain.ErrInvalidParent
		}
		exists, err := s.repo.ModelNameExists(ctx, s.db, brandID, name, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateName
		}
		row := &domain.Model{
			ID:            id,
			ProductTypeID: brand.ProductTypeID,
			BrandID:       brandID,
			Name:          name,
			Slug:          nameSlug,
			SortOrder:     req.SortOrder,
			IsActive:      true,
			Audit:         audit,
		}
		if err := s.repo.SaveModel(ctx, s.db, row); err != nil {
			return nil, err
		}
		s.log.Info("catalog entry created", zap.String("kind", string(req.Kind)), zap.Int64("id", id))
		item := modelItem(row)
		return &item, nil

	case domain.KindColor:
		exists, err := s.repo.ColorNameExists(ctx, s.db, name, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateName
		}
		row := &domain.Color{ID: id, Name: name, Slug: nameSlug, SortOrder: req.SortOrder, IsActive: true, Audit: audit}
		if err := s.repo.SaveColor(ctx, s.db, row); err != nil {
			return nil, err
		}
		s.log.Info("catalog entry created", zap.String("kind", string(req.Kind)), zap.Int64("id", id))
		item := colorItem(row)
		return &item, nil

	case domain.KindCondition:
		quality := 100
		if req.QualityPercentage != nil {
			quality = *req.QualityPercentage
		}
		if quality < 0 || quality > 100 {
			return nil, domain.ErrInvalidPercentage
		}
		exists, err := s.repo.ConditionNameExists(ctx, s.db, name, 0)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateName
		}
		row := &domain.Condition{
			ID:                id,
			Name:              name,
			Slug:              nameSlug,
			QualityPercentage: quality,
			SortOrder:         req.SortOrder,
			IsActive:          true,
			Audit:             audit,
		}
		if err := s.repo.SaveCondition(ctx, s.db, row); err != nil {
			return nil, err
		}
		s.log.Info("catalog entry created", zap.String("kind", string(req.Kind)), zap.Int64("id", id))
		item := conditionItem(row)
		return &item, nil
	}
	return nil, domain.ErrInvalidKind
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Item, error) {
	if !domain.ValidKind(req.Kind) {
		return nil, domain.ErrInvalidKind
	}
	id, ok := parseID(req.ID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	var name string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
	}

	actor := actorcontext.ActorOrSystem(ctx)
	now := s.clock.Now()

	switch req.Kind {
	case domain.KindProductType:
		row, err := s.repo.FindProductTypeByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, domain.ErrNotFound
		}
		if req.Name != nil && name != row.Name {
			exists, err := s.repo.ProductTypeNameExists(ctx, s.db, name, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateName
			}
			row.Name = name
			row.Slug = slug.Make(name)
		}
		if req.SortOrder != nil {
			row.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			row.IsActive = *req.IsActive
		}
		row.UpdatedAt = now
		row.UpdatedBy = actor
		if err := s.repo.SaveProductType(ctx, s.db, row); err != nil {
			return nil, err
		}
		item := productTypeItem(row)
		return &item, nil

	case domain.KindBrand:
		row, err := s.repo.FindBrandByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, domain.ErrNotFound
		}
		if req.Name != nil && name != row.Name {
			exists, err := s.repo.BrandNameExists(ctx, s.db, row.ProductTypeID, name, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateName
			}
			row.Name = name
			row.Slug = slug.Make(name)
		}
		if req.SortOrder != nil {
			row.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			row.IsActive = *req.IsActive
		}
		row.UpdatedAt = now
		row.UpdatedBy = actor
		if err := s.repo.SaveBrand(ctx, s.db, row); err != nil {
			return nil, err
		}
		item := brandItem(row)
		return &item, nil

	case domain.KindModel:
		row, err := s.repo.FindModelByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, domain.ErrNotFound
		}
		if req.Name != nil && name != row.Name {
			exists, err := s.repo.ModelNameExists(ctx, s.db, row.BrandID, name, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateName
			}
			row.Name = name
			row.Slug = slug.Make(name)
		}
		if req.SortOrder != nil {
			row.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			row.IsActive = *req.IsActive
		}
		row.UpdatedAt = now
		row.UpdatedBy = actor
		if err := s.repo.SaveModel(ctx, s.db, row); err != nil {
			return nil, err
		}
		item := modelItem(row)
		return &item, nil

	case domain.KindColor:
		row, err := s.repo.FindColorByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, domain.ErrNotFound
		}
		if req.Name != nil && name != row.Name {
			exists, err := s.repo.ColorNameExists(ctx, s.db, name, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateName
			}
			row.Name = name
			row.Slug = slug.Make(name)
		}
		if req.SortOrder != nil {
			row.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			row.IsActive = *req.IsActive
		}
		row.UpdatedAt = now
		row.UpdatedBy = actor
		if err := s.repo.SaveColor(ctx, s.db, row); err != nil {
			return nil, err
		}
		item := colorItem(row)
		return &item, nil

	case domain.KindCondition:
		row, err := s.repo.FindConditionByID(ctx, s.db, id)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, domain.ErrNotFound
		}
		if req.Name != nil && name != row.Name {
			exists, err := s.repo.ConditionNameExists(ctx, s.db, name, id)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrDuplicateName
			}
			row.Name = name
			row.Slug = slug.Make(name)
		}
		if req.QualityPercentage != nil {
			if *req.QualityPercentage < 0 || *req.QualityPercentage > 100 {
				return nil, domain.ErrInvalidPercentage
			}
			row.QualityPercentage = *req.QualityPercentage
		}
		if req.SortOrder != nil {
			row.SortOrder = *req.SortOrder
		}
		if req.IsActive != nil {
			row.IsActive = *req.IsActive
		}
		row.UpdatedAt = now
		row.UpdatedBy = actor
		if err := s.repo.SaveCondition(ctx, s.db, row); err != nil {
			return nil, err
		}
		item := conditionItem(row)
		return &item, nil
	}
	return nil, domain.ErrInvalidKind
}

// Archive soft-deletes a catalog entry. An entry still referenced by a
// live product cannot be archived.
func (s *Service) Archive(ctx context.Context, kind domain.Kind, rawID string) error {
	if !domain.ValidKind(kind) {
		return domain.ErrInvalidKind
	}
	id, ok := parseID(rawID)
	if !ok {
		return domain.ErrNotFound
	}

	column := map[domain.Kind]string{
		domain.KindProductType: "product_type_id",
		domain.KindBrand:       "brand_id",
		domain.KindModel:       "model_id",
		domain.KindColor:       "color_id",
		domain.KindCondition:   "condition_id",
	}[kind]

	inUse, err := s.repo.InUseByProducts(ctx, s.db, column, id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrInUse
	}

	actor := actorcontext.ActorOrSystem(ctx)
	now := s.clock.Now()
	markDeleted := func(audit *domain.Audit) {
		audit.IsDeleted = true
		audit.DeletedAt = &now
		audit.DeletedBy = &actor
		audit.UpdatedAt = now
		audit.UpdatedBy = actor
	}

	switch kind {
	case domain.KindProductType:
		row, err := s.repo.FindProductTypeByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound
		}
		markDeleted(&row.Audit)
		return s.repo.SaveProductType(ctx, s.db, row)
	case domain.KindBrand:
		row, err := s.repo.FindBrandByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound
		}
		markDeleted(&row.Audit)
		return s.repo.SaveBrand(ctx, s.db, row)
	case domain.KindModel:
		row, err := s.repo.FindModelByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound
		}
		markDeleted(&row.Audit)
		return s.repo.SaveModel(ctx, s.db, row)
	case domain.KindColor:
		row, err := s.repo.FindColorByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound
		}
		markDeleted(&row.Audit)
		return s.repo.SaveColor(ctx, s.db, row)
	case domain.KindCondition:
		row, err := s.repo.FindConditionByID(ctx, s.db, id)
		if err != nil {
			return err
		}
		if row == nil {
			return domain.ErrNotFound
		}
		markDeleted(&row.Audit)
		return s.repo.SaveCondition(ctx, s.db, row)
	}
	return domain.ErrInvalidKind
}

func productTypeItem(row *domain.ProductType) domain.Item {
	return domain.Item{
		ID:        formatID(row.ID),
		Kind:      domain.KindProductType,
		Name:      row.Name,
		Slug:      row.Slug,
		SortOrder: row.SortOrder,
		IsActive:  row.IsActive,
	}
}

func brandItem(row *domain.Brand) domain.Item {
	typeID := formatID(row.ProductTypeID)
	return domain.Item{
		ID:            formatID(row.ID),
		Kind:          domain.KindBrand,
		Name:          row.Name,
		Slug:          row.Slug,
		SortOrder:     row.SortOrder,
		IsActive:      row.IsActive,
		ProductTypeID: &typeID,
	}
}

func modelItem(row *domain.Model) domain.Item {
	typeID := formatID(row.ProductTypeID)
	brandID := formatID(row.BrandID)
	return domain.Item{
		ID:            formatID(row.ID),
		Kind:          domain.KindModel,
		Name:          row.Name,
		Slug:          row.Slug,
		SortOrder:     row.SortOrder,
		IsActive:      row.IsActive,
		ProductTypeID: &typeID,
		BrandID:       &brandID,
	}
}

func colorItem(row *domain.Color) domain.Item {
	return domain.Item{
		ID:        formatID(row.ID),
		Kind:      domain.KindColor,
		Name:      row.Name,
		Slug:      row.Slug,
		SortOrder: row.SortOrder,
		IsActive:  row.IsActive,
	}
}

func conditionItem(row *domain.Condition) domain.Item {
	quality := row.QualityPercentage
	return domain.Item{
		ID:                formatID(row.ID),
		Kind:              domain.KindCondition,
		Name:              row.Name,
		Slug:              row.Slug,
		SortOrder:         row.SortOrder,
		IsActive:          row.IsActive,
		QualityPercentage: &quality,
	}
}

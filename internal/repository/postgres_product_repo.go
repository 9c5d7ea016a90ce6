package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/nutriscan/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した製品リポジトリ。
// 栄養値・栄養素レベル・画像URLはJSONB、states_tagsはTEXT[]で保存する。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// FindByBarcode は指定バーコードの製品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	p := &model.Product{}
	var brand, grade, servingSize, defaultLanguage, thumbnailURL sql.NullString
	var nutriments, levels, imageURLs []byte
	var statesTags pq.StringArray

	err := r.db.QueryRowContext(ctx,
		`SELECT barcode, name, brand, nutrition_grade, serving_size, per_volume,
		        no_nutrition_data, nutriments, nutrient_levels, nutrition_image_urls,
		        default_language, thumbnail_url, states_tags, created_at, updated_at
		 FROM products WHERE barcode = $1`,
		barcode,
	).Scan(
		&p.Barcode, &p.Name, &brand, &grade, &servingSize, &p.PerVolume,
		&p.NoNutritionData, &nutriments, &levels, &imageURLs,
		&defaultLanguage, &thumbnailURL, &statesTags, &p.CreatedAt, &p.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("製品の取得に失敗しました: %w", err)
	}

	if err := json.Unmarshal(nutriments, &p.Nutriments); err != nil {
		return nil, fmt.Errorf("栄養値のデコードに失敗しました: %w", err)
	}
	if err := json.Unmarshal(levels, &p.NutrientLevels); err != nil {
		return nil, fmt.Errorf("栄養素レベルのデコードに失敗しました: %w", err)
	}
	if err := json.Unmarshal(imageURLs, &p.NutritionImageURLs); err != nil {
		return nil, fmt.Errorf("栄養成分画像URLのデコードに失敗しました: %w", err)
	}

	// JSONのキーと値の種別を一致させる
	for kind, v := range p.Nutriments {
		if v.Nutrient == "" {
			v.Nutrient = kind
			p.Nutriments[kind] = v
		}
	}

	p.Brand = nullStringValue(brand)
	p.NutritionGrade = nullStringValue(grade)
	p.ServingSize = nullStringValue(servingSize)
	p.DefaultLanguage = nullStringValue(defaultLanguage)
	p.ThumbnailURL = nullStringValue(thumbnailURL)
	p.StatesTags = []string(statesTags)

	return p, nil
}

// Upsert は製品を作成または上書き更新する。created_atは初回登録時の値を維持する。
func (r *PostgresProductRepo) Upsert(ctx context.Context, p *model.Product) error {
	nutriments, err := json.Marshal(nonNilNutriments(p.Nutriments))
	if err != nil {
		return fmt.Errorf("栄養値のエンコードに失敗しました: %w", err)
	}
	levels, err := json.Marshal(p.NutrientLevels)
	if err != nil {
		return fmt.Errorf("栄養素レベルのエンコードに失敗しました: %w", err)
	}
	imageURLs := p.NutritionImageURLs
	if imageURLs == nil {
		imageURLs = map[string]string{}
	}
	images, err := json.Marshal(imageURLs)
	if err != nil {
		return fmt.Errorf("栄養成分画像URLのエンコードに失敗しました: %w", err)
	}
	statesTags := p.StatesTags
	if statesTags == nil {
		statesTags = []string{}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO products (barcode, name, brand, nutrition_grade, serving_size, per_volume,
		                       no_nutrition_data, nutriments, nutrient_levels, nutrition_image_urls,
		                       default_language, thumbnail_url, states_tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (barcode) DO UPDATE SET
		    name = EXCLUDED.name,
		    brand = EXCLUDED.brand,
		    nutrition_grade = EXCLUDED.nutrition_grade,
		    serving_size = EXCLUDED.serving_size,
		    per_volume = EXCLUDED.per_volume,
		    no_nutrition_data = EXCLUDED.no_nutrition_data,
		    nutriments = EXCLUDED.nutriments,
		    nutrient_levels = EXCLUDED.nutrient_levels,
		    nutrition_image_urls = EXCLUDED.nutrition_image_urls,
		    default_language = EXCLUDED.default_language,
		    thumbnail_url = EXCLUDED.thumbnail_url,
		    states_tags = EXCLUDED.states_tags,
		    updated_at = EXCLUDED.updated_at`,
		p.Barcode, p.Name, nullString(p.Brand), nullString(p.NutritionGrade),
		nullString(p.ServingSize), p.PerVolume, p.NoNutritionData,
		nutriments, levels, images,
		nullString(p.DefaultLanguage), nullString(p.ThumbnailURL),
		pq.Array(statesTags), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("製品の保存に失敗しました: %w", err)
	}
	return nil
}

func nonNilNutriments(n model.Nutriments) model.Nutriments {
	if n == nil {
		return model.Nutriments{}
	}
	return n
}

// nullString は空文字列をsql.NullStringに変換する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

var _ ProductRepository = (*PostgresProductRepo)(nil)

package initial

import (
	"context"
	"fmt"
	"strings"

	"LeadForge/internal/config"

	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// NewMilvusClient connects to Milvus and ensures the template collection and
// its index exist. The schema mirrors the metadata the index serves back on
// search: truncated subject, category, tone, body preview.
func NewMilvusClient(ctx context.Context, conf *config.Config) (mclient.Client, error) {
	addr := strings.TrimSpace(conf.MilvusConfig.Address)
	if addr == "" {
		return nil, fmt.Errorf("milvus address not configured")
	}

	dbName := strings.TrimSpace(conf.MilvusConfig.DBName)
	if dbName == "" {
		dbName = "leadforge"
	}
	collection := strings.TrimSpace(conf.MilvusConfig.CollectionName)
	if collection == "" {
		collection = "email_templates"
	}
	dim := conf.MilvusConfig.VectorDim
	if dim <= 0 {
		dim = 384
	}

	defaultCli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.MilvusConfig.Username),
		Password: strings.TrimSpace(conf.MilvusConfig.Password),
		DBName:   "default",
	})
	if err != nil {
		return nil, err
	}

	dbs, err := defaultCli.ListDatabases(ctx)
	if err != nil {
		_ = defaultCli.Close()
		return nil, err
	}
	exists := false
	for _, db := range dbs {
		if db.Name == dbName {
			exists = true
			break
		}
	}
	if !exists {
		if err := defaultCli.CreateDatabase(ctx, dbName); err != nil {
			_ = defaultCli.Close()
			return nil, err
		}
	}
	_ = defaultCli.Close()

	cli, err := mclient.NewClient(ctx, mclient.Config{
		Address:  addr,
		Username: strings.TrimSpace(conf.MilvusConfig.Username),
		Password: strings.TrimSpace(conf.MilvusConfig.Password),
		DBName:   dbName,
	})
	if err != nil {
		return nil, err
	}

	if err := ensureTemplateCollection(ctx, cli, collection, dim); err != nil {
		_ = cli.Close()
		return nil, err
	}
	return cli, nil
}

func ensureTemplateCollection(ctx context.Context, cli mclient.Client, collection string, dim int) error {
	cols, err := cli.ListCollections(ctx)
	if err != nil {
		return err
	}
	for _, c := range cols {
		if c.Name == collection {
			return cli.LoadCollection(ctx, collection, false)
		}
	}

	schema := &entity.Schema{
		CollectionName: collection,
		Description:    "LeadForge email template vectors",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "vector",
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{entity.TypeParamDim: fmt.Sprintf("%d", dim)},
			},
			{
				Name:       "subject",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "512"},
			},
			{
				Name:       "category",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "tone",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "64"},
			},
			{
				Name:       "body_preview",
				DataType:   entity.FieldTypeVarChar,
				TypeParams: map[string]string{"max_length": "256"},
			},
		},
	}

	if err := cli.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return err
	}

	idx, err := entity.NewIndexAUTOINDEX(entity.COSINE)
	if err != nil {
		return err
	}
	if err := cli.CreateIndex(ctx, collection, "vector", idx, false); err != nil {
		return err
	}
	return cli.LoadCollection(ctx, collection, false)
}

package dynamo

import (
	"context"
	"errors"
	"fmt"

	"farmacia-catalogo/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrTenant = "tenant_id"
	attrCodigo = "codigo"
)

type productRepository struct {
	client         DynamoAPI
	table          string
	consistentRead bool
}

func NewProductRepository(client DynamoAPI, table string, consistentRead bool) domain.ProductRepository {
	return &productRepository{
		client:         client,
		table:          table,
		consistentRead: consistentRead,
	}
}

// --- Helpers ---

func key(tenantID, codigo string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrTenant: &types.AttributeValueMemberS{Value: tenantID},
		attrCodigo: &types.AttributeValueMemberS{Value: codigo},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

func unmarshalProduct(item map[string]types.AttributeValue) (*domain.Product, error) {
	var p domain.Product
	if err := attributevalue.UnmarshalMap(item, &p); err != nil {
		return nil, fmt.Errorf("unmarshal product: %w", err)
	}
	return &p, nil
}

// filterCondition translates a ProductFilter into a FilterExpression.
// ok is false when the filter has no predicates.
func filterCondition(f domain.ProductFilter) (cond expression.ConditionBuilder, ok bool) {
	var parts []expression.ConditionBuilder

	if f.Categoria != "" {
		parts = append(parts, expression.Name("categoria").Equal(expression.Value(f.Categoria)))
	}
	if f.Subcategoria != "" {
		parts = append(parts, expression.Name("subcategoria").Equal(expression.Value(f.Subcategoria)))
	}
	if f.Laboratorio != "" {
		parts = append(parts, expression.Name("laboratorio").Contains(f.Laboratorio))
	}
	if f.RequiereReceta != nil {
		parts = append(parts, expression.Name("requiere_receta").Equal(expression.Value(*f.RequiereReceta)))
	}
	if f.PrecioMin != nil {
		parts = append(parts, expression.Name("precio").GreaterThanEqual(expression.Value(*f.PrecioMin)))
	}
	if f.PrecioMax != nil {
		parts = append(parts, expression.Name("precio").LessThanEqual(expression.Value(*f.PrecioMax)))
	}
	if f.Search != "" {
		parts = append(parts, expression.Or(
			expression.Name("nombre").Contains(f.Search),
			expression.Name("descripcion").Contains(f.Search),
		))
	}
	if f.Termino != "" {
		parts = append(parts, expression.Name("texto_busqueda").Contains(f.Termino))
	}
	if f.SoloActivos {
		parts = append(parts, expression.Name("activo").Equal(expression.Value(true)))
	}

	switch len(parts) {
	case 0:
		return cond, false
	case 1:
		return parts[0], true
	default:
		return expression.And(parts[0], parts[1], parts[2:]...), true
	}
}

// updateExpression turns a patch into SET/REMOVE clauses.
func updateExpression(pp *domain.ProductPatch) expression.UpdateBuilder {
	var upd expression.UpdateBuilder
	set := func(name string, v interface{}) {
		upd = upd.Set(expression.Name(name), expression.Value(v))
	}

	if pp.Nombre != nil {
		set("nombre", *pp.Nombre)
	}
	if pp.Precio != nil {
		set("precio", *pp.Precio)
	}
	if pp.Descripcion != nil {
		set("descripcion", *pp.Descripcion)
	}
	if pp.Categoria != nil {
		set("categoria", *pp.Categoria)
	}
	if pp.ClearSubcat {
		upd = upd.Remove(expression.Name("subcategoria"))
	} else if pp.Subcategoria != nil {
		set("subcategoria", *pp.Subcategoria)
	}
	if pp.StockDisponible != nil {
		set("stock_disponible", *pp.StockDisponible)
	}
	if pp.RequiereReceta != nil {
		set("requiere_receta", *pp.RequiereReceta)
	}
	if pp.Laboratorio != nil {
		set("laboratorio", *pp.Laboratorio)
	}
	if pp.Presentacion != nil {
		set("presentacion", *pp.Presentacion)
	}
	if pp.ImagenURL != nil {
		set("imagen_url", *pp.ImagenURL)
	}
	if pp.Activo != nil {
		set("activo", *pp.Activo)
	}
	if pp.TextoBusqueda != nil {
		set("texto_busqueda", *pp.TextoBusqueda)
	}
	set("fecha_modificacion", pp.FechaModificacion)
	return upd
}

// --- Implementation ---

func (r *productRepository) Get(ctx context.Context, tenantID, codigo string) (*domain.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            key(tenantID, codigo),
		ConsistentRead: aws.Bool(r.consistentRead),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return unmarshalProduct(out.Item)
}

func (r *productRepository) Put(ctx context.Context, product *domain.Product) error {
	item, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (r *productRepository) Insert(ctx context.Context, product *domain.Product) error {
	item, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeNotExists(expression.Name(attrCodigo))).
		Build()
	if err != nil {
		return fmt.Errorf("build condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.ErrCodeConflict
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, tenantID, codigo string, patch *domain.ProductPatch) (*domain.Product, error) {
	expr, err := expression.NewBuilder().
		WithUpdate(updateExpression(patch)).
		WithCondition(expression.AttributeExists(expression.Name(attrCodigo))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       key(tenantID, codigo),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return unmarshalProduct(out.Attributes)
}

func (r *productRepository) Delete(ctx context.Context, tenantID, codigo string) (*domain.Product, error) {
	expr, err := expression.NewBuilder().
		WithCondition(expression.AttributeExists(expression.Name(attrCodigo))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build condition: %w", err)
	}

	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.table),
		Key:                      key(tenantID, codigo),
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
		ReturnValues:             types.ReturnValueAllOld,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("delete item: %w", err)
	}
	if len(out.Attributes) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return unmarshalProduct(out.Attributes)
}

func (r *productRepository) queryInput(tenantID string, opts domain.QueryOptions) (*dynamodb.QueryInput, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key(attrTenant).Equal(expression.Value(tenantID)))
	if cond, ok := filterCondition(opts.Filter); ok {
		builder = builder.WithFilter(cond)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	in := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(opts.Ascending),
		ConsistentRead:            aws.Bool(r.consistentRead),
	}
	if opts.Limit > 0 {
		in.Limit = aws.Int32(opts.Limit)
	}
	if opts.StartKey != nil {
		in.ExclusiveStartKey = key(opts.StartKey.TenantID, opts.StartKey.Codigo)
	}
	return in, nil
}

func (r *productRepository) Query(ctx context.Context, tenantID string, opts domain.QueryOptions) (*domain.Page, error) {
	in, err := r.queryInput(tenantID, opts)
	if err != nil {
		return nil, err
	}

	out, err := r.client.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	page := &domain.Page{Items: []domain.Product{}}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &page.Items); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}
	if len(out.LastEvaluatedKey) > 0 {
		var next domain.Cursor
		if err := attributevalue.UnmarshalMap(out.LastEvaluatedKey, &next); err != nil {
			return nil, fmt.Errorf("unmarshal last key: %w", err)
		}
		page.NextKey = &next
	}
	return page, nil
}

func (r *productRepository) QueryAll(ctx context.Context, tenantID string) ([]domain.Product, error) {
	in, err := r.queryInput(tenantID, domain.QueryOptions{})
	if err != nil {
		return nil, err
	}

	products := []domain.Product{}
	paginator := dynamodb.NewQueryPaginator(r.client, in)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query page: %w", err)
		}
		var items []domain.Product
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal page: %w", err)
		}
		products = append(products, items...)
	}
	return products, nil
}

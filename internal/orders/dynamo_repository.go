package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rkdoors/storefront-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// dynamoAPI is the subset of *dynamodb.Client used by the repository.
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// orderItem is the DynamoDB shape. Table requirements: PK id (string).
type orderItem struct {
	ID           string `dynamodbav:"id"`
	UserID       string `dynamodbav:"user_id"`
	DoorID       string `dynamodbav:"door_id"`
	DoorName     string `dynamodbav:"door_name"`
	DoorImage    string `dynamodbav:"door_image"`
	DoorCategory string `dynamodbav:"door_category"`
	Price        string `dynamodbav:"price"`
	Width        string `dynamodbav:"width"`
	Height       string `dynamodbav:"height"`
	Thickness    string `dynamodbav:"thickness"`
	Name         string `dynamodbav:"name"`
	Address      string `dynamodbav:"address"`
	PhoneNumber  string `dynamodbav:"phone_number"`
	Pincode      string `dynamodbav:"pincode"`
	State        string `dynamodbav:"state"`
	Status       string `dynamodbav:"status"`
	OrderDate    string `dynamodbav:"order_date"`
	DeliveryDate string `dynamodbav:"delivery_date,omitempty"`
}

// DynamoRepository is the DynamoDB backed Store.
type DynamoRepository struct {
	api   dynamoAPI
	table string
	now   func() time.Time
}

func NewDynamoRepository(api dynamoAPI, table string) (*DynamoRepository, error) {
	if api == nil {
		return nil, fmt.Errorf("dynamodb client is required")
	}
	if table == "" {
		return nil, fmt.Errorf("dynamodb orders table is required")
	}
	return &DynamoRepository{api: api, table: table, now: utcNow}, nil
}

func (r *DynamoRepository) Push(ctx context.Context, order Order) (Order, error) {
	order.ID = newOrderID()
	order.OrderDate = r.now()
	order.DeliveryDate = nil
	if order.Status == "" {
		order.Status = enums.OrderStatusPending
	}

	av, err := attributevalue.MarshalMap(toItem(order))
	if err != nil {
		return Order{}, fmt.Errorf("marshal order: %w", err)
	}
	_, err = r.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.table),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": "id"},
	})
	if err != nil {
		return Order{}, fmt.Errorf("put order: %w", err)
	}
	return order, nil
}

func (r *DynamoRepository) Patch(ctx context.Context, id string, status enums.OrderStatus) (Order, error) {
	expr := "SET #status = :status"
	names := map[string]string{"#id": "id", "#status": "status"}
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: string(status)},
	}
	if status == enums.OrderStatusDelivered {
		expr += ", #delivery_date = :delivery_date"
		names["#delivery_date"] = "delivery_date"
		values[":delivery_date"] = &types.AttributeValueMemberS{Value: formatTime(r.now())}
	}

	out, err := r.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("update order: %w", err)
	}

	var it orderItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return Order{}, fmt.Errorf("unmarshal order: %w", err)
	}
	return fromItem(it), nil
}

func (r *DynamoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// List scans every page of the table. Ordering is left to the caller.
func (r *DynamoRepository) List(ctx context.Context) ([]Order, error) {
	paginator := dynamodb.NewScanPaginator(r.api, &dynamodb.ScanInput{
		TableName:      aws.String(r.table),
		ConsistentRead: aws.Bool(true),
	})
	out := []Order{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		var items []orderItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		for _, it := range items {
			out = append(out, fromItem(it))
		}
	}
	return out, nil
}

func toItem(o Order) orderItem {
	it := orderItem{
		ID:           o.ID,
		UserID:       o.UserID,
		DoorID:       o.DoorID,
		DoorName:     o.DoorName,
		DoorImage:    o.DoorImage,
		DoorCategory: o.DoorCategory,
		Price:        o.Price.String(),
		Width:        o.Width,
		Height:       o.Height,
		Thickness:    o.Thickness,
		Name:         o.Name,
		Address:      o.Address,
		PhoneNumber:  o.PhoneNumber,
		Pincode:      o.Pincode,
		State:        o.State,
		Status:       string(o.Status),
		OrderDate:    formatTime(o.OrderDate),
	}
	if o.DeliveryDate != nil {
		it.DeliveryDate = formatTime(*o.DeliveryDate)
	}
	return it
}

func fromItem(it orderItem) Order {
	price, err := decimal.NewFromString(it.Price)
	if err != nil {
		price = decimal.Zero
	}
	orderDate, _ := time.Parse(time.RFC3339Nano, it.OrderDate)
	o := Order{
		ID:           it.ID,
		UserID:       it.UserID,
		DoorID:       it.DoorID,
		DoorName:     it.DoorName,
		DoorImage:    it.DoorImage,
		DoorCategory: it.DoorCategory,
		Price:        price,
		Width:        it.Width,
		Height:       it.Height,
		Thickness:    it.Thickness,
		Name:         it.Name,
		Address:      it.Address,
		PhoneNumber:  it.PhoneNumber,
		Pincode:      it.Pincode,
		State:        it.State,
		Status:       enums.OrderStatus(it.Status),
		OrderDate:    orderDate,
	}
	if it.DeliveryDate != "" {
		if at, err := time.Parse(time.RFC3339Nano, it.DeliveryDate); err == nil {
			o.DeliveryDate = &at
		}
	}
	return o
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

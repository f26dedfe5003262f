package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
)

var _ interfaces.CRM = &Client{}

// listPageSize is the page size used when paging through every object
const listPageSize = 100

type objectResponse struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Archived   bool           `json:"archived"`
}

func (r *objectResponse) toModel() *model.RemoteObject {
	obj := &model.RemoteObject{
		ID:         r.ID,
		Properties: make(map[string]string, len(r.Properties)),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Archived:   r.Archived,
	}
	for k, v := range r.Properties {
		switch x := v.(type) {
		case nil:
		case string:
			obj.Properties[k] = x
		default:
			obj.Properties[k] = fmt.Sprint(x)
		}
	}
	return obj
}

type listResponse struct {
	Results []objectResponse `json:"results"`
	Paging  *struct {
		Next *struct {
			After string `json:"after"`
		} `json:"next"`
	} `json:"paging"`
}

func (r *listResponse) nextCursor() string {
	if r.Paging == nil || r.Paging.Next == nil {
		return ""
	}
	return r.Paging.Next.After
}

func objectPath(objectType string, id ...string) string {
	p := "/crm/v3/objects/" + url.PathEscape(objectType)
	for _, x := range id {
		p += "/" + url.PathEscape(x)
	}
	return p
}

func validObjectType(objectType string) error {
	switch objectType {
	case model.ObjectContacts, model.ObjectCompanies, model.ObjectDeals:
		return nil
	}
	return goerr.New("unsupported CRM object type", goerr.V("object_type", objectType))
}

type propertiesBody struct {
	Properties map[string]string `json:"properties"`
}

func (c *Client) CreateObject(ctx context.Context, token, objectType string, props map[string]string) (*model.RemoteObject, error) {
	if err := validObjectType(objectType); err != nil {
		return nil, err
	}

	var resp objectResponse
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   objectPath(objectType),
		token:  token,
		body:   propertiesBody{Properties: props},
		create: true,
	}, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to create CRM object", goerr.V("object_type", objectType))
	}
	return resp.toModel(), nil
}

func (c *Client) GetObject(ctx context.Context, token, objectType, id string) (*model.RemoteObject, error) {
	if err := validObjectType(objectType); err != nil {
		return nil, err
	}

	var resp objectResponse
	if err := c.do(ctx, request{
		method: http.MethodGet,
		path:   objectPath(objectType, id),
		token:  token,
	}, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to get CRM object",
			goerr.V("object_type", objectType), goerr.V("object_id", id))
	}
	return resp.toModel(), nil
}

// ListObjects returns one page when opts.Limit is set, otherwise pages
// through the whole collection
func (c *Client) ListObjects(ctx context.Context, token, objectType string, opts interfaces.ListOptions) ([]*model.RemoteObject, error) {
	if err := validObjectType(objectType); err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = listPageSize
	}

	var objects []*model.RemoteObject
	after := opts.After
	for {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		if after != "" {
			q.Set("after", after)
		}
		if len(opts.Properties) > 0 {
			q.Set("properties", strings.Join(opts.Properties, ","))
		}

		var resp listResponse
		if err := c.do(ctx, request{
			method: http.MethodGet,
			path:   objectPath(objectType),
			token:  token,
			query:  q,
		}, &resp); err != nil {
			return nil, goerr.Wrap(err, "failed to list CRM objects", goerr.V("object_type", objectType))
		}

		for i := range resp.Results {
			objects = append(objects, resp.Results[i].toModel())
		}

		after = resp.nextCursor()
		if opts.Limit > 0 || after == "" {
			break
		}
	}

	return objects, nil
}

func (c *Client) UpdateObject(ctx context.Context, token, objectType, id string, props map[string]string) (*model.RemoteObject, error) {
	if err := validObjectType(objectType); err != nil {
		return nil, err
	}

	var resp objectResponse
	if err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   objectPath(objectType, id),
		token:  token,
		body:   propertiesBody{Properties: props},
	}, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to update CRM object",
			goerr.V("object_type", objectType), goerr.V("object_id", id))
	}
	return resp.toModel(), nil
}

func (c *Client) DeleteObject(ctx context.Context, token, objectType, id string) error {
	if err := validObjectType(objectType); err != nil {
		return err
	}

	if err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   objectPath(objectType, id),
		token:  token,
	}, nil); err != nil {
		return goerr.Wrap(err, "failed to delete CRM object",
			goerr.V("object_type", objectType), goerr.V("object_id", id))
	}
	return nil
}

type searchFilter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

type searchFilterGroup struct {
	Filters []searchFilter `json:"filters"`
}

type searchBody struct {
	FilterGroups []searchFilterGroup `json:"filterGroups"`
	Limit        int                 `json:"limit,omitempty"`
}

// SearchObjects finds objects whose property contains value as a token
func (c *Client) SearchObjects(ctx context.Context, token, objectType, property, value string) ([]*model.RemoteObject, error) {
	if err := validObjectType(objectType); err != nil {
		return nil, err
	}

	var resp listResponse
	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   objectPath(objectType, "search"),
		token:  token,
		body: searchBody{
			FilterGroups: []searchFilterGroup{{
				Filters: []searchFilter{{PropertyName: property, Operator: "CONTAINS_TOKEN", Value: value}},
			}},
			Limit: listPageSize,
		},
	}, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to search CRM objects",
			goerr.V("object_type", objectType), goerr.V("property", property))
	}

	objects := make([]*model.RemoteObject, 0, len(resp.Results))
	for i := range resp.Results {
		objects = append(objects, resp.Results[i].toModel())
	}
	return objects, nil
}

func (c *Client) AssociateDealContact(ctx context.Context, token, dealID, contactID string) error {
	path := fmt.Sprintf("/crm/v4/objects/deals/%s/associations/contacts/%s/deal_to_contact",
		url.PathEscape(dealID), url.PathEscape(contactID))

	if err := c.do(ctx, request{
		method: http.MethodPut,
		path:   path,
		token:  token,
		body:   struct{}{},
	}, nil); err != nil {
		return goerr.Wrap(err, "failed to associate deal with contact",
			goerr.V("deal_id", dealID), goerr.V("contact_id", contactID))
	}
	return nil
}

type engagementBody struct {
	Engagement struct {
		Active    bool   `json:"active"`
		Type      string `json:"type"`
		Timestamp int64  `json:"timestamp"`
	} `json:"engagement"`
	Associations struct {
		ContactIDs []int64 `json:"contactIds"`
	} `json:"associations"`
	Metadata struct {
		Body string `json:"body"`
	} `json:"metadata"`
}

// CreateNote attaches a note engagement to a contact
func (c *Client) CreateNote(ctx context.Context, token, contactID, body string) error {
	id, err := strconv.ParseInt(contactID, 10, 64)
	if err != nil {
		return goerr.Wrap(model.ErrRemoteValidation, "contact id must be numeric", goerr.V("contact_id", contactID))
	}

	var eng engagementBody
	eng.Engagement.Active = true
	eng.Engagement.Type = "NOTE"
	eng.Engagement.Timestamp = time.Now().UnixMilli()
	eng.Associations.ContactIDs = []int64{id}
	eng.Metadata.Body = body

	if err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/engagements/v1/engagements",
		token:  token,
		body:   eng,
		create: true,
	}, nil); err != nil {
		return goerr.Wrap(err, "failed to create note", goerr.V("contact_id", contactID))
	}
	return nil
}

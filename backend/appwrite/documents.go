package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"reflect"
	"time"

	"campusbite/metrics"
	"campusbite/models"

	"github.com/mitchellh/mapstructure"
)

// query is one Appwrite query in its JSON form.
type query map[string]any

func equal(attr string, values ...any) query {
	return query{"method": "equal", "attribute": attr, "values": values}
}

func orderAsc(attr string) query  { return query{"method": "orderAsc", "attribute": attr} }
func orderDesc(attr string) query { return query{"method": "orderDesc", "attribute": attr} }
func limitTo(n int) query         { return query{"method": "limit", "values": []any{n}} }
func offsetBy(n int) query        { return query{"method": "offset", "values": []any{n}} }

func encodeQueries(qs []query) (url.Values, error) {
	v := url.Values{}
	for _, q := range qs {
		data, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		v.Add("queries[]", string(data))
	}
	return v, nil
}

// Permission strings in Appwrite's role syntax.
func readAny() string             { return `read("any")` }
func readUsers() string           { return `read("users")` }
func readUser(id string) string   { return fmt.Sprintf(`read("user:%s")`, id) }
func updateUser(id string) string { return fmt.Sprintf(`update("user:%s")`, id) }
func deleteUser(id string) string { return fmt.Sprintf(`delete("user:%s")`, id) }

// collection addresses the documents of one collection.
type collection struct {
	c  *Client
	id string
}

func (c *Client) collection(id string) collection {
	return collection{c: c, id: id}
}

func (col collection) path(docID string) string {
	p := "/databases/" + url.PathEscape(col.c.cfg.DatabaseID) + "/collections/" + url.PathEscape(col.id) + "/documents"
	if docID != "" {
		p += "/" + url.PathEscape(docID)
	}
	return p
}

func (col collection) create(ctx context.Context, data map[string]any, perms []string, out any) error {
	var raw map[string]any
	body := map[string]any{"documentId": "unique()", "data": data}
	if len(perms) > 0 {
		body["permissions"] = perms
	}
	if err := col.c.do(ctx, http.MethodPost, col.path(""), nil, body, &raw); err != nil {
		return err
	}
	return decode(raw, out)
}

func (col collection) get(ctx context.Context, id string, out any) error {
	var raw map[string]any
	if err := col.c.do(ctx, http.MethodGet, col.path(id), nil, nil, &raw); err != nil {
		return err
	}
	return decode(raw, out)
}

// list decodes the matching documents into out, a pointer to a slice.
// Documents that do not decode are logged, counted and left out.
func (col collection) list(ctx context.Context, qs []query, out any) error {
	params, err := encodeQueries(qs)
	if err != nil {
		return err
	}
	var raw struct {
		Total     int              `json:"total"`
		Documents []map[string]any `json:"documents"`
	}
	if err := col.c.do(ctx, http.MethodGet, col.path(""), params, nil, &raw); err != nil {
		return err
	}

	// Documents decode one at a time so a malformed one is skipped, not
	// fatal to the whole page.
	slice := reflect.ValueOf(out).Elem()
	docs := reflect.MakeSlice(slice.Type(), 0, len(raw.Documents))
	for _, doc := range raw.Documents {
		item := reflect.New(slice.Type().Elem())
		if err := decode(doc, item.Interface()); err != nil {
			metrics.SkippedRecords.WithLabelValues("document").Inc()
			log.Printf("WARN skipping document %v in collection %s: %v", doc["$id"], col.id, err)
			continue
		}
		docs = reflect.Append(docs, item.Elem())
	}
	slice.Set(docs)
	return nil
}

func (col collection) update(ctx context.Context, id string, data map[string]any, out any) error {
	var raw map[string]any
	if err := col.c.do(ctx, http.MethodPatch, col.path(id), nil, map[string]any{"data": data}, &raw); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decode(raw, out)
}

// decode maps raw documents onto the typed document structs. Relation
// attributes come back either as ids or as embedded documents; both decode
// to the id.
func decode(input, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(relationHook, timeHook),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("malformed document: %w", err)
	}
	return nil
}

func relationHook(from, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice:
		return models.RefID(data), nil
	}
	return data, nil
}

var timeType = reflect.TypeOf(time.Time{})

func timeHook(from, to reflect.Type, data any) (any, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	s := data.(string)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

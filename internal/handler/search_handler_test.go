package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdir-backend/internal/service"
	"bizdir-backend/internal/utils"
)

func queryContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	req, err := http.NewRequest(http.MethodGet, "/search?"+rawQuery, nil)
	require.NoError(t, err)
	ctx.Request = req
	return ctx
}

func TestParseCoordinates(t *testing.T) {
	tests := []struct {
		name    string
		lat     string
		lng     string
		wantGeo bool
		wantErr bool
	}{
		{"absent pair", "", "", false, false},
		{"valid pair", "19.0760", "72.8777", true, false},
		{"negative in range", "-33.8688", "151.2093", true, false},
		{"lat without lng", "19.0760", "", false, true},
		{"lng without lat", "", "72.8777", false, true},
		{"lat not numeric", "abc", "72.8777", false, true},
		{"lng not numeric", "19.0760", "xyz", false, true},
		{"lat out of range", "91", "72.8777", false, true},
		{"lng out of range", "19.0760", "181", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hasGeo, lat, lng, err := parseCoordinates(tt.lat, tt.lng)
			if tt.wantErr {
				require.Error(t, err)
				ve, ok := service.AsValidation(err)
				require.True(t, ok)
				assert.Equal(t, service.CodeInvalidCoordinates, ve.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantGeo, hasGeo)
			if hasGeo {
				assert.NotZero(t, lat)
				assert.NotZero(t, lng)
			}
		})
	}
}

func TestParseSearchParamsCoercion(t *testing.T) {
	ctx := queryContext(t, "q=salon&page=bogus&limit=9000&minRating=oops&minPrice=100")
	params, err := parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
	require.NoError(t, err)

	assert.Equal(t, "salon", params.Query)
	assert.Equal(t, 1, params.Page, "malformed page falls back")
	assert.Equal(t, utils.MAX_SEARCH_PAGE_SIZE, params.Limit, "oversized limit clamps")
	assert.Zero(t, params.MinRating, "malformed rating falls back")
	assert.True(t, params.HasPriceFilter)
	assert.Equal(t, 100.0, params.MinPrice)
	assert.Zero(t, params.MaxPrice)
}

func TestParseSearchParamsCategoryAliases(t *testing.T) {
	ctx := queryContext(t, "type=gym")
	params, err := parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
	require.NoError(t, err)
	assert.Equal(t, "gym", params.Category)

	ctx = queryContext(t, "category=salon&type=gym")
	params, err = parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
	require.NoError(t, err)
	assert.Equal(t, "salon", params.Category, "category wins over its alias")
}

func TestParseSearchParamsRadiusAlias(t *testing.T) {
	ctx := queryContext(t, "maxDistance=2500")
	params, err := parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
	require.NoError(t, err)
	assert.Equal(t, 2500.0, params.RadiusM)
}

func TestParseSearchParamsAmenitiesList(t *testing.T) {
	ctx := queryContext(t, "amenities=parking,%20wifi%20,,ac")
	params, err := parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
	require.NoError(t, err)
	assert.Equal(t, []string{"parking", "wifi", "ac"}, params.Amenities)
}

func TestParseSearchParamsSplitGeoCursor(t *testing.T) {
	ctx := queryContext(t, "cursorDistance=450.5&cursorId=12")
	params, err := parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
	require.NoError(t, err)
	require.NotEmpty(t, params.Cursor)

	cur, err := service.DecodeCursor(params.Cursor)
	require.NoError(t, err)
	assert.Equal(t, 450.5, cur.D)
	assert.Equal(t, int64(12), cur.ID)
}

func TestParseSearchParamsRejectsBadCursorID(t *testing.T) {
	for _, q := range []string{"cursorId=abc", "cursorId=0", "cursorId=-3"} {
		ctx := queryContext(t, q)
		_, err := parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
		require.Error(t, err, q)
		ve, ok := service.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, service.CodeInvalidCursor, ve.Code)
	}
}

func TestParseSearchParamsRejectsBadCoordinates(t *testing.T) {
	ctx := queryContext(t, "lat=19.0760")
	_, err := parseSearchParams(ctx, utils.MAX_SEARCH_PAGE_SIZE)
	require.Error(t, err)
	ve, ok := service.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, service.CodeInvalidCoordinates, ve.Code)
}

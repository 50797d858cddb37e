// Package http exposes the booking service over HTTP.
//
// The router serves the following endpoints:
//   - POST /webhook: chat outgoing-webhook entry point. Body:
//     {"token","writerName","writerEmail","text",...}. The token must match the
//     configured webhook token; configured trigger words are stripped from the start
//     of text before it is handed to the command pipeline. Response:
//     {"body","connectColor","connectInfo":[{"title","description"}]}.
//   - GET /admin/rooms, POST /admin/rooms, GET /admin/rooms/{id},
//     PUT /admin/rooms/{id}: room catalog administration exchanging the `roomDTO`
//     payload defined in room_handler.go.
//   - GET /admin/audit?limit=N: newest processed commands first.
//   - GET /healthz and GET /metrics (Prometheus exposition).
//
// Admin endpoints require `Authorization: Bearer <admin key>` verified against the
// configured argon2id hash and are not mounted when no hash is configured.
package http

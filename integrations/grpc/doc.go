// Package grpc provides gRPC server interceptors for cookie sessions.
//
// The interceptors read the session cookie from the Cookie headers that
// browsers send through grpc-web proxies or grpc-gateway, verify it with a
// core.Manager and store the resolved identity in the request context.
//
// # Basic Usage
//
//	import (
//	    sessiongrpc "github.com/auth0/go-session-middleware/integrations/grpc"
//	    "google.golang.org/grpc"
//	)
//
//	func main() {
//	    interceptor, err := sessiongrpc.New(
//	        sessiongrpc.WithCodec(tokenCodec),
//	        sessiongrpc.WithExcludedMethods("/auth.v1.Auth/Login"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    server := grpc.NewServer(
//	        grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	        grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	    )
//	    // register services ...
//	}
//
// Handlers read the identity with CurrentUser:
//
//	func (s *server) Profile(ctx context.Context, req *pb.ProfileRequest) (*pb.Profile, error) {
//	    identity, err := sessiongrpc.CurrentUser(ctx)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &pb.Profile{UserId: identity.UserID}, nil
//	}
//
// # Establishing and Destroying Sessions
//
// Establish and Destroy send the cookie mutation as "set-cookie" response
// header metadata. An HTTP gateway must forward that key as the Set-Cookie
// header. The Secure attribute follows the transport in core.SecureAuto mode:
// it is set when the client connected over TLS.
//
//	func (s *server) Login(ctx context.Context, req *pb.LoginRequest) (*pb.LoginResponse, error) {
//	    user, err := s.users.Authenticate(ctx, req.Username, req.Password)
//	    if err != nil {
//	        return nil, status.Error(codes.Unauthenticated, "bad credentials")
//	    }
//	    if err := s.sessions.Establish(ctx, core.Claims{Subject: user.ID}); err != nil {
//	        return nil, err
//	    }
//	    return &pb.LoginResponse{}, nil
//	}
//
// # Error Handling
//
// DefaultErrorHandler maps:
//
//   - core.ErrUnauthorized to codes.Unauthenticated
//   - malformed authorization metadata to codes.InvalidArgument
//   - everything else to codes.Internal
//
// # Excluded Methods
//
// Methods listed with WithExcludedMethods skip the session check, which is
// how login endpoints and health checks stay reachable.
package grpc
